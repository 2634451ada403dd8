package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"authcore/config"
	"authcore/internal/entity"
	"authcore/internal/repository"
	"authcore/internal/service"
	"authcore/internal/utils"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// createadmin provisions an administrator directly in the database. The HTTP
// surface only ever registers plain users.
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	email := flag.String("email", "", "admin email")
	userName := flag.String("username", "", "admin username")
	firstName := flag.String("first-name", "Admin", "first name")
	lastName := flag.String("last-name", "User", "last name")
	phone := flag.String("phone", "", "phone number")
	flag.Parse()

	if *email == "" || *userName == "" {
		fmt.Fprintln(os.Stderr, "usage: createadmin -email <email> -username <name>")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}
	if cfg.Store != config.StorePostgres {
		logger.Fatal("createadmin requires STORE=postgres")
	}

	fmt.Println("Enter password")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		logger.WithError(err).Fatal("read password")
	}
	if strings.TrimSpace(string(password)) == "" {
		logger.Fatal("password must not be empty")
	}

	ctx := context.Background()
	db, err := config.ConnectionDb(cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("database connection failed")
	}
	if err := config.Migrate(ctx, db); err != nil {
		logger.WithError(err).Fatal("migration failed")
	}

	authService, err := service.NewAuthService(
		repository.NewUserRepository(db),
		repository.NewSessionRepository(db),
		repository.NewSecurityLogRepository(db),
		service.BcryptPasswordHasher{Cost: cfg.BcryptCost},
		service.JWTAccessIssuer{Manager: &utils.JWTManager{Secret: []byte(cfg.JWTSecret), Issuer: cfg.JWTIssuer}},
		service.RealClock{},
		service.AuthConfig{SessionTTL: cfg.SessionTTL},
		logger,
	)
	if err != nil {
		logger.WithError(err).Fatal("auth service init failed")
	}

	result, err := authService.Register(ctx, service.RegisterInput{
		FirstName: *firstName,
		LastName:  *lastName,
		UserName:  *userName,
		Email:     *email,
		Phone:     *phone,
		Password:  string(password),
		Role:      entity.UserRoleAdmin,
	}, service.RequestMeta{IPAddress: "local", UserAgent: "createadmin"})
	if err != nil {
		logger.WithError(err).Fatal("create admin failed")
	}
	fmt.Printf("admin %s created (%s)\n", result.User.UserName, result.User.ID)
}
