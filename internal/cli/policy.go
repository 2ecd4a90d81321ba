package cli

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/reflectd/internal/drift"
)

// policySchema constrains a drift policy file. The bounds must be
// positive and ordered: the clamp bound is the tightest, the stop bound
// the loosest.
const policySchema = `
policy: {
	clamp: number & >0
	warn:  number & >=clamp
	stop:  number & >=warn
}
`

// PolicyError represents an error in a drift policy file.
type PolicyError struct {
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *PolicyError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// LoadPolicy loads drift thresholds from a CUE policy file, validated
// against the embedded schema.
func LoadPolicy(path string) (drift.Thresholds, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return drift.Thresholds{}, &PolicyError{Message: fmt.Sprintf("reading policy file: %v", err)}
	}

	ctx := cuecontext.New()

	schema := ctx.CompileString(policySchema)
	if err := schema.Err(); err != nil {
		return drift.Thresholds{}, &PolicyError{Message: fmt.Sprintf("compiling policy schema: %v", err)}
	}

	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return drift.Thresholds{}, cueError("compiling policy", err)
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return drift.Thresholds{}, cueError("validating policy", err)
	}

	var decoded struct {
		Clamp float64 `json:"clamp"`
		Warn  float64 `json:"warn"`
		Stop  float64 `json:"stop"`
	}
	if err := unified.LookupPath(cue.ParsePath("policy")).Decode(&decoded); err != nil {
		return drift.Thresholds{}, cueError("decoding policy", err)
	}

	return drift.Thresholds{
		Clamp: decoded.Clamp,
		Warn:  decoded.Warn,
		Stop:  decoded.Stop,
	}, nil
}

// cueError converts a CUE error into a PolicyError carrying the first
// available source position.
func cueError(context string, err error) *PolicyError {
	perr := &PolicyError{Message: fmt.Sprintf("%s: %v", context, err)}
	if positions := errors.Positions(errors.Promote(err, context)); len(positions) > 0 {
		perr.Pos = positions[0]
	}
	return perr
}
