package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/memodb-io/assetbucket/internal/config"
	"github.com/memodb-io/assetbucket/internal/modules/serializer"
	"github.com/memodb-io/assetbucket/internal/pkg/utils/secrets"
	"github.com/memodb-io/assetbucket/internal/pkg/utils/tokens"
)

const SecretTokenHeader = "X-Secret-Token"

// SecretTokenAuth returns a middleware that guards mutating endpoints with the
// shared secret sent in X-Secret-Token. When root.secret_token_phc is set the
// token is verified against that argon2id hash; otherwise it is compared with
// root.secret_token. A malformed PHC string is reported here, at startup.
func SecretTokenAuth(cfg *config.Config) (gin.HandlerFunc, error) {
	var verifier *secrets.Verifier
	if cfg.Root.SecretTokenPHC != "" {
		v, err := secrets.NewVerifier(cfg.Root.SecretTokenPHC, cfg.Root.SecretPepper)
		if err != nil {
			return nil, err
		}
		verifier = v
	}

	check := func(token string) bool {
		if verifier != nil {
			return verifier.Verify(token)
		}
		return tokens.Equal(cfg.Root.SecretPepper, token, cfg.Root.SecretToken)
	}

	return func(c *gin.Context) {
		_, authSpan := otel.Tracer("middleware").Start(c.Request.Context(), "secret_token_auth",
			trace.WithAttributes(attribute.String("middleware", "secret_token_auth")))

		ok := check(c.GetHeader(SecretTokenHeader))
		authSpan.SetAttributes(attribute.Bool("authenticated", ok))
		authSpan.End()

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("Invalid token"))
			return
		}
		c.Next()
	}, nil
}
