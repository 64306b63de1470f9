// Command initdata prints Telegram Mini App init-data signed with a bot token,
// for calling the API from curl without a Telegram client.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	tgdata "github.com/telegram-mini-apps/init-data-golang"

	"github.com/open-builders/todo-backend/internal/features/auth/initdata"
)

func main() {
	_ = godotenv.Load()

	var (
		token     string
		id        int64
		username  string
		firstName string
		lastName  string
		age       time.Duration
	)
	flag.StringVar(&token, "token", os.Getenv("BOT_TOKEN"), "bot token (default: $BOT_TOKEN)")
	flag.Int64Var(&id, "id", 0, "telegram user id")
	flag.StringVar(&username, "username", "", "telegram username")
	flag.StringVar(&firstName, "first-name", "", "first name (default: username)")
	flag.StringVar(&lastName, "last-name", "", "last name")
	flag.DurationVar(&age, "age", 0, "backdate auth_date by this much")
	flag.Parse()

	if token == "" || id == 0 {
		fmt.Fprintln(os.Stderr, "usage: initdata -token <bot token> -id <telegram id> [-username name]")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if firstName == "" {
		firstName = username
	}

	user, err := json.Marshal(map[string]interface{}{
		"id":         id,
		"first_name": firstName,
		"last_name":  lastName,
		"username":   username,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	raw := initdata.Sign(map[string]string{
		"user":      string(user),
		"auth_date": strconv.FormatInt(time.Now().Add(-age).Unix(), 10),
	}, token)

	// Cross-check against the reference implementation before printing.
	if err := tgdata.Validate(raw, token, 0); err != nil {
		fmt.Fprintf(os.Stderr, "Error: reference validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(raw)
}
