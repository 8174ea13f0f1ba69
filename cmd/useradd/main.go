// Command useradd registers an account directly against the configured store.
//
//	useradd -name "Jane Smith" -email jane@example.com -d DSN [-s SECRET]
//
// The password is prompted for without echo when stdin is a terminal and
// read from the first line of stdin otherwise.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/dmitrijs2005/pecunia/internal/flagx"
	"github.com/dmitrijs2005/pecunia/internal/logging"
	"github.com/dmitrijs2005/pecunia/internal/server"
	"github.com/dmitrijs2005/pecunia/internal/server/auth"
	"github.com/dmitrijs2005/pecunia/internal/server/config"
	"github.com/dmitrijs2005/pecunia/internal/server/services"
	"golang.org/x/term"
)

func main() {

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	if cfg.DatabaseDSN == "" {
		log.Fatalf("%v", errNoDatabase)
	}

	name, email, err := parseArgs(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	password, err := readPassword(os.Stdin, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}

	id, err := register(ctx, cfg, services.RegisterInput{Name: name, Email: email, Password: password})
	if err != nil {
		log.Fatalf("%v", err)
	}

	fmt.Printf("registered %s (id=%s)\n", email, id)
}

func parseArgs(args []string) (string, string, error) {
	var name, email string

	fs := flag.NewFlagSet("useradd", flag.ContinueOnError)
	fs.StringVar(&name, "name", "", "display name")
	fs.StringVar(&email, "email", "", "login email")

	if err := fs.Parse(flagx.FilterArgs(args, []string{"-name", "-email"})); err != nil {
		return "", "", err
	}
	if name == "" || email == "" {
		return "", "", errors.New("both -name and -email are required")
	}
	return name, email, nil
}

// readPassword prompts on prompt without echo when in is a terminal.
func readPassword(in *os.File, prompt io.Writer) (string, error) {
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(prompt, "Password: ")
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("error reading password: %w", err)
		}
		return string(b), nil
	}
	return readPasswordLine(in)
}

func readPasswordLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("error reading password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("empty password")
	}
	return line, nil
}

// errNoDatabase: without a DSN the account would only live in memory.
var errNoDatabase = errors.New("useradd needs a database: pass -d or set PECUNIA_DATABASE_DSN")

func register(ctx context.Context, cfg *config.Config, in services.RegisterInput) (string, error) {
	if cfg.DatabaseDSN == "" {
		return "", errNoDatabase
	}

	store, err := server.OpenStore(ctx, cfg)
	if err != nil {
		return "", err
	}
	defer store.Close()

	hasher, err := auth.NewHasher(cfg.BcryptCost, cfg.HashWorkers)
	if err != nil {
		return "", err
	}

	us := services.NewUserService(store, hasher, cfg, logging.Nop(), nil)
	session, err := us.Register(ctx, in)
	if err != nil {
		return "", err
	}

	// the command only creates the account
	if err := us.Logout(ctx, session.RefreshToken); err != nil {
		return "", err
	}
	return session.User.ID, nil
}
