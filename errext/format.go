package errext

import (
	"errors"
)

// Format splits err into a message and the log fields describing it: the
// hint of a HasHint and the code of a HasExitCode.
func Format(err error) (string, map[string]interface{}) {
	if err == nil {
		return "", nil
	}

	fields := make(map[string]interface{})
	var herr HasHint
	if errors.As(err, &herr) {
		fields["hint"] = herr.Hint()
	}
	var ecerr HasExitCode
	if errors.As(err, &ecerr) {
		fields["exitCode"] = int(ecerr.ExitCode())
	}

	return err.Error(), fields
}
