package main

import (
	"context"
	"errors"
	"fmt"

	portssvc "github.com/SscSPs/money_tracker/internal/core/ports/services"
	"github.com/SscSPs/money_tracker/internal/middleware"
	"github.com/SscSPs/money_tracker/internal/platform/server"
	"github.com/SscSPs/money_tracker/internal/platform/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// session is an open store plus the services over it, scoped to the acting user.
type session struct {
	ctx    context.Context
	userID string
	svc    *portssvc.ServiceContainer
	close  func()
}

// openSession opens the configured store. Commands that read or write user data need --user.
func (a *app) openSession(cmd *cobra.Command) (*session, error) {
	userID := viper.GetString("CLI_USER")
	if userID == "" {
		return nil, errors.New("--user (or CLI_USER) is required")
	}

	ctx := middleware.WithUserID(cmd.Context(), userID)
	ctx = middleware.WithLogger(ctx, a.logger)

	uow, err := storage.Open(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	svc, err := server.NewServices(a.cfg, uow)
	if err != nil {
		uow.Close()
		return nil, err
	}
	return &session{ctx: ctx, userID: userID, svc: svc, close: uow.Close}, nil
}
