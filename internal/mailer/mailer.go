package mailer

import (
	"log"
	"os"
	"strconv"

	"github.com/wneessen/go-mail"

	"onrise_back_end/internal/models"
	"onrise_back_end/internal/utils"
)

// Mailer : envoi des e-mails de confirmation de commande. Construit une fois
// au démarrage avec sa configuration explicite, passé par référence — pas de
// transport global ambiant.
type Mailer struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	BrandName  string
	StoreEmail string // adresse interne prévenue à chaque commande payée
}

func New() *Mailer {
	port := 587
	if raw := os.Getenv("SMTP_PORT"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			port = parsed
		}
	}

	brand := os.Getenv("BRAND_NAME")
	if brand == "" {
		brand = "OneRise"
	}

	return &Mailer{
		Host:       os.Getenv("SMTP_HOST"),
		Port:       port,
		Username:   os.Getenv("SMTP_USERNAME"),
		Password:   os.Getenv("SMTP_PASSWORD"),
		From:       os.Getenv("MAIL_FROM"),
		BrandName:  brand,
		StoreEmail: os.Getenv("STORE_EMAIL"),
	}
}

// SendOrderEmails envoie la confirmation client puis l'alerte boutique.
// Deux envois indépendants : l'échec de l'un n'empêche jamais l'autre, et
// aucun échec ne remonte à l'appelant — tout est tracé puis avalé.
func (m *Mailer) SendOrderEmails(order models.Order) {
	if order.Customer.Email == "" {
		log.Println("⚠️ E-mail client absent, confirmation non envoyée")
	} else {
		subject := "Confirmation de votre commande " + m.BrandName
		if err := m.send(order.Customer.Email, subject, utils.GenerateOrderConfirmationHTML(order, m.BrandName)); err != nil {
			log.Println("❌ Erreur envoi e-mail confirmation :", err)
		} else {
			log.Println("📧 E-mail de confirmation envoyé à", order.Customer.Email)
		}
	}

	if m.StoreEmail == "" {
		log.Println("⚠️ STORE_EMAIL non configuré, alerte boutique non envoyée")
		return
	}
	subject := "Nouvelle commande payée – " + order.Customer.FullName
	if err := m.send(m.StoreEmail, subject, utils.GenerateStoreAlertHTML(order, m.BrandName)); err != nil {
		log.Println("❌ Erreur envoi e-mail boutique :", err)
	} else {
		log.Println("📧 Alerte boutique envoyée à", m.StoreEmail)
	}
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	msg := mail.NewMsg()

	if err := msg.From(m.From); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(m.Host,
		mail.WithPort(m.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(m.Username),
		mail.WithPassword(m.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSend(msg)
}
