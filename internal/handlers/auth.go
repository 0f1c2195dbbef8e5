package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"onrise_back_end/internal/database"
	"onrise_back_end/internal/utils"
)

// 🟢 Connexion admin
func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "E-mail et mot de passe requis"})
		return
	}

	session, err := database.GetStoreSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	var passwordHash string
	err = session.Query(`SELECT password_hash FROM admins WHERE email = ?`, input.Email).Scan(&passwordHash)

	// Même réponse pour e-mail inconnu et mot de passe erroné
	if err != nil || !utils.VerifyPassword(input.Password, passwordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "E-mail ou mot de passe incorrect"})
		return
	}

	token, err := utils.GenerateAdminJWT(input.Email)
	if err != nil {
		log.Println("❌ Erreur génération JWT:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération du token"})
		return
	}

	log.Println("✅ Connexion admin :", input.Email)
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"email": input.Email,
	})
}

// 🔴 Déconnexion (le token est simplement abandonné côté client)
func Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ✅ Vérifie que le token porté est toujours valide (passe par AdminRequired)
func VerifyToken(c *gin.Context) {
	email, _ := c.Get("admin_email")
	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"email": email,
	})
}
