package email

import (
	"fmt"
	"strings"
)

// Welcome builds the message sent after a local registration.
func Welcome(to, firstName, loginURL string) Message {
	greeting := "Hello"
	if name := strings.TrimSpace(firstName); name != "" {
		greeting += " " + name
	}
	body := fmt.Sprintf(
		"%s,\n\nYour invoicehub account %s is ready.\n\nSign in at:\n\n  %s\n\nIf you did not create this account, ignore this email.\n",
		greeting, to, loginURL,
	)
	return Message{To: to, Subject: "Welcome to invoicehub", Body: body}
}
