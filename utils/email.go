package utils

import (
    "os"
    "strconv"

    "gopkg.in/gomail.v2"
)

func SendEmail(to, subject, body string) error {
    from := os.Getenv("SMTP_FROM")

    m := gomail.NewMessage()
    m.SetHeader("From", from)
    m.SetHeader("To", to)
    m.SetHeader("Subject", subject)
    m.SetBody("text/plain", body)

    port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
    if err != nil {
        port = 465
    }

    d := gomail.NewDialer(os.Getenv("SMTP_HOST"), port, os.Getenv("SMTP_USER"), os.Getenv("SMTP_PASS"))

    return d.DialAndSend(m)
}
