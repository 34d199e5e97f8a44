// Command vapidkeys prints a fresh VAPID key pair in .env format.
package main

import (
	"fmt"
	"log"

	"github.com/lostfound-notify/internal/infrastructure/webpush"
)

func main() {
	pub, priv, err := webpush.GenerateKeys()
	if err != nil {
		log.Fatalf("generate vapid keys: %v", err)
	}
	fmt.Printf("VAPID_PUBLIC_KEY=%s\nVAPID_PRIVATE_KEY=%s\n", pub, priv)
}
