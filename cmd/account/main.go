// Package main provides a CLI tool for creating accounts and assigning
// their role.
package main

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jeenyuhs/Ragnarok/internal/config"
	"github.com/jeenyuhs/Ragnarok/internal/game/session"
	"github.com/jeenyuhs/Ragnarok/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	username := flag.String("username", "", "target account username (required)")
	role := flag.String("role", "player", "role to assign: "+strings.Join(session.RoleNames(), ", "))
	password := flag.String("password", "", "create the account with this plaintext password")
	flag.Parse()

	if *username == "" {
		flag.Usage()
		os.Exit(1)
	}

	priv, err := session.ParseRole(*role)
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer pool.Close()

	users := postgres.NewUserRepository(pool.DB())

	if *password != "" {
		// The client sends the hex MD5 of the password, so that is what gets hashed.
		sum := md5.Sum([]byte(*password))
		u, err := users.Create(ctx, *username, hex.EncodeToString(sum[:]), priv)
		if errors.Is(err, postgres.ErrUserExists) {
			log.Fatalf("account %q already exists", *username)
		}
		if err != nil {
			log.Fatalf("creating account: %v", err)
		}
		fmt.Fprintf(os.Stdout, "created %s (#%d) as %s [%s]\n", u.Name, u.ID, *role, time.Since(start))
		return
	}

	u, err := users.ByName(ctx, *username)
	if err != nil {
		log.Fatalf("looking up account %q: %v", *username, err)
	}
	if err := users.SetPrivileges(ctx, u.ID, priv); err != nil {
		log.Fatalf("setting role: %v", err)
	}
	fmt.Fprintf(os.Stdout, "set role for %s (#%d): %d -> %d (%s) [%s]\n",
		u.Name, u.ID, u.Privileges, priv, *role, time.Since(start))
}
