package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/adityatechndevoops/OliveStore/config"
	"github.com/adityatechndevoops/OliveStore/internal/models"
	"github.com/adityatechndevoops/OliveStore/internal/service"
	"github.com/adityatechndevoops/OliveStore/internal/store"
	"github.com/adityatechndevoops/OliveStore/internal/util"
)

type promoter interface {
	PromoteToAdmin(ctx context.Context, email, phone string) (*models.User, error)
}

func run(ctx context.Context, args []string, users promoter, out io.Writer) error {
	fs := flag.NewFlagSet("make-admin", flag.ContinueOnError)
	fs.SetOutput(out)
	email := fs.String("email", "", "email of the user to promote")
	phone := fs.String("phone", "", "phone number of the user to promote")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" && *phone == "" {
		fs.Usage()
		return fmt.Errorf("one of --email or --phone is required")
	}

	user, err := users.PromoteToAdmin(ctx, *email, *phone)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s (%s) is now %s\n", user.Name, user.ID, user.Role)
	return nil
}

func main() {
	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, os.Args[1:], service.NewUserService(db), os.Stdout); err != nil {
		log.Fatalf("make-admin: %v", err)
	}
}
