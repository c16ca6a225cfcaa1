package parser

// PotMismatchPolicy controls what happens when computed pot totals disagree
// with the declared totals beyond tolerance.
type PotMismatchPolicy int

const (
	// PotMismatchAdvisory annotates the parsed hand with a warning and
	// returns it anyway. This is the default.
	PotMismatchAdvisory PotMismatchPolicy = iota

	// PotMismatchFatal fails the parse with a ParseError.
	PotMismatchFatal
)

// Option configures a Parser during creation.
type Option func(*Parser)

// WithActionParser substitutes the action line parser, e.g. for another
// poker-room dialect.
func WithActionParser(ap ActionParser) Option {
	return func(p *Parser) { p.actions = ap }
}

// WithPlayerTracker substitutes the chip ledger implementation.
func WithPlayerTracker(t PlayerTracker) Option {
	return func(p *Parser) { p.tracker = t }
}

// WithPotCalculator substitutes the side-pot calculator.
func WithPotCalculator(pc PotCalculator) Option {
	return func(p *Parser) { p.pots = pc }
}

// WithValidator substitutes the post-assembly validator.
func WithValidator(v Validator) Option {
	return func(p *Parser) { p.validator = v }
}

// WithStrictChips makes a chip-balance underflow beneath the zero clamp a
// parse error instead of being silently absorbed.
func WithStrictChips(strict bool) Option {
	return func(p *Parser) { p.strictChips = strict }
}

// WithPotMismatchPolicy sets the policy for pot-math disagreements beyond
// the floating tolerance.
func WithPotMismatchPolicy(policy PotMismatchPolicy) Option {
	return func(p *Parser) { p.potPolicy = policy }
}
