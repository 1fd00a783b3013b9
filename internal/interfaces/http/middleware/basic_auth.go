package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/quarkgate/apikit/pkg/constants"
	"github.com/quarkgate/apikit/pkg/errors"
)

// BasicAuth guards the wrapped routes with HTTP basic authentication.
// Credentials are compared in constant time. A failed or missing challenge
// answers 401 with a WWW-Authenticate header and the error envelope.
func BasicAuth(username, password string) gin.HandlerFunc {
	expectedUser := sha256.Sum256([]byte(username))
	expectedPass := sha256.Sum256([]byte(password))

	return func(c *gin.Context) {
		user, pass, ok := c.Request.BasicAuth()
		if ok {
			givenUser := sha256.Sum256([]byte(user))
			givenPass := sha256.Sum256([]byte(pass))

			userMatch := subtle.ConstantTimeCompare(expectedUser[:], givenUser[:]) == 1
			passMatch := subtle.ConstantTimeCompare(expectedPass[:], givenPass[:]) == 1
			if userMatch && passMatch {
				c.Next()
				return
			}
		}

		c.Header(constants.HeaderWWWAuthenticate,
			fmt.Sprintf("%s realm=%s", constants.BasicScheme, constants.BasicRealm))
		abortWithError(c, errors.Unauthorized("Unauthorized"))
	}
}
