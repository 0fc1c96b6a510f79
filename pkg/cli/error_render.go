package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jlrickert/md5coll/pkg/collider"
	"github.com/jlrickert/md5coll/pkg/config"
	"github.com/jlrickert/md5coll/pkg/oracle"
	"github.com/jlrickert/md5coll/pkg/payload"
)

func renderUserError(err error, deps *Deps) string {
	if err == nil {
		return ""
	}

	var unavailable *oracle.UnavailableError
	if errors.As(err, &unavailable) {
		msg := fmt.Sprintf("fastcoll is not available (%s)", unavailable.Path)
		if isDebugLogLevel(deps) && unavailable.Cause != nil {
			msg += ": " + unavailable.Cause.Error()
		}
		return msg + "; set fastcoll.path or run `md5coll provision --download`"
	}

	var exhausted *oracle.ExhaustedError
	if errors.As(err, &exhausted) {
		if isDebugLogLevel(deps) || exhausted.Cause == nil {
			return err.Error()
		}
		return fmt.Sprintf("no acceptable collision after %d attempts; raise retries or relax the forbid list", exhausted.Attempts)
	}

	var alignment *collider.AlignmentError
	if errors.As(err, &alignment) {
		return fmt.Sprintf("content must be block aligned before a strict divergence (length %d)", alignment.Len)
	}

	if config.IsInvalid(err) {
		return "invalid config: " + err.Error()
	}

	if errors.Is(err, payload.ErrMarkerNotFound) {
		return "input has no usable marker runs: " + err.Error()
	}

	return err.Error()
}

func isDebugLogLevel(deps *Deps) bool {
	if deps == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(deps.LogLevel), "debug")
}
