package middleware

import (
	"bytes"
	"io"

	"cargodesk/internal/errs"
	"cargodesk/internal/utils/crypto"

	"github.com/labstack/echo/v4"
)

// VerifySignature rejects requests whose body is not signed with secret.
// The body is restored so handlers can bind it.
func VerifySignature(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			body, err := io.ReadAll(c.Request().Body)
			if err != nil {
				return errs.InvalidRequest("failed to read request body")
			}
			_ = c.Request().Body.Close()

			signature := c.Request().Header.Get(crypto.SignatureHeader)
			if !crypto.VerifyWebhookSignature(body, secret, signature) {
				log.Warn("Rejected webhook with bad signature from %s", c.RealIP())
				return errs.Unauthorized("invalid signature")
			}

			c.Request().Body = io.NopCloser(bytes.NewReader(body))
			return next(c)
		}
	}
}
