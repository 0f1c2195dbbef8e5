package middleware

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AdminRequired vérifie le Bearer token admin. Réponse 401 identique quel que
// soit le problème (header absent, malformé, token invalide ou expiré) : on
// ne renseigne pas l'appelant sur la cause exacte.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		reject := func() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Non autorisé"})
			c.Abort()
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			reject()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			reject()
			return
		}

		secret := []byte(os.Getenv("JWT_SECRET"))
		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("méthode de signature inattendue: %v", token.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			log.Printf("❌ Token admin refusé: %v", err)
			reject()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			reject()
			return
		}

		email, ok := claims["email"].(string)
		if !ok || email == "" {
			reject()
			return
		}

		// L'identité admin est mise dans le contexte pour les handlers suivants
		c.Set("admin_email", email)
		c.Next()
	}
}
