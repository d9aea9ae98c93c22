package main

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/eringen/followdash"
	"github.com/eringen/followdash/fakebackend"
	"github.com/eringen/followdash/logging"
)

func runFakeBackend() error {
	log, err := logging.New(followdash.EnvOr("LOG_LEVEL", "info"))
	if err != nil {
		return err
	}
	defer log.Sync()

	store, err := fakebackend.NewStore(followdash.EnvOr("FAKEBACKEND_DB", "data/fakebackend.db"))
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := store.User(fakebackend.DemoUID); errors.Is(err, fakebackend.ErrNotFound) {
		if err := fakebackend.Seed(store, fakebackend.DemoUID, time.Now()); err != nil {
			return err
		}
		log.Info("seeded demo data", zap.String("uid", fakebackend.DemoUID))
	} else if err != nil {
		return err
	}

	addr := followdash.EnvOr("FAKEBACKEND_ADDR", ":8080")
	log.Info("fake backend listening", zap.String("addr", addr))
	return fakebackend.NewServer(store, fakebackend.WithLogger(log.Named("fakebackend"))).Start(addr)
}
