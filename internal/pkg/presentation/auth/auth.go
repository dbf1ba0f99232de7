package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/open-policy-agent/opa/v1/rego"
)

var ErrNotAllowed = errors.New("not allowed")

const query string = "x = data.quakemap.authz.allow"

// NewAuthenticator compiles the rego policies read from policies into a
// middleware that evaluates data.quakemap.authz.allow for every request.
func NewAuthenticator(ctx context.Context, logger *slog.Logger, policies io.Reader) (func(http.Handler) http.Handler, error) {
	module, err := io.ReadAll(policies)
	if err != nil {
		return nil, fmt.Errorf("unable to read authz policies: %w", err)
	}

	prepared, err := rego.New(
		rego.Query(query),
		rego.Module("quakemap.rego", string(module)),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to prepare authz policies: %w", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			input := map[string]any{
				"method": r.Method,
				"path":   strings.Split(strings.Trim(r.URL.Path, "/"), "/"),
				"token":  bearerToken(r),
			}

			err := evaluate(r.Context(), prepared, input)
			if err != nil {
				if !errors.Is(err, ErrNotAllowed) {
					logger.Error("failed to evaluate authz policy", "err", err.Error())
				}
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

func evaluate(ctx context.Context, q rego.PreparedEvalQuery, input map[string]any) error {
	results, err := q.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return err
	}

	if len(results) == 0 {
		return ErrNotAllowed
	}

	allowed, ok := results[0].Bindings["x"].(bool)
	if !ok || !allowed {
		return ErrNotAllowed
	}

	return nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return header[7:]
	}
	return ""
}
