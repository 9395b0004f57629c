// Command opschat-token prints a signed operator token for local testing.
package main

import (
	"encoding/base64"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/npezzotti/go-opschat/internal/api"
	"github.com/npezzotti/go-opschat/internal/config"
	"github.com/npezzotti/go-opschat/internal/types"
)

func main() {
	logger := log.New(os.Stderr, "[ops-chat-token] ", 0)

	if err := config.LoadEnv(); err != nil && !os.IsNotExist(err) {
		logger.Println("load .env:", err)
	}

	var (
		signingKey = flag.String("signing-key", os.Getenv("OPSCHAT_SIGNING_KEY"), "base64 encoded signing key")
		operatorId = flag.Int("operator", 0, "operator id")
		roleName   = flag.String("role", "member", "operator role")
		exp        = flag.Duration("exp", 24*time.Hour, "token lifetime")
	)
	flag.Parse()

	if *operatorId <= 0 {
		logger.Fatal("-operator is required")
	}

	role, err := types.ParseRole(*roleName)
	if err != nil {
		logger.Fatal(err)
	}

	key, err := base64.StdEncoding.DecodeString(*signingKey)
	if err != nil || len(key) == 0 {
		logger.Fatal("invalid signing key")
	}

	token, err := api.NewToken(key, *operatorId, role, *exp)
	if err != nil {
		logger.Fatal("sign token:", err)
	}

	fmt.Println(token)
}
