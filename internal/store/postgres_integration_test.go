// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package store_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/holomush/luahost/internal/scripts"
	"github.com/holomush/luahost/internal/store"
)

// setupPostgresContainer starts PostgreSQL, applies migrations and connects.
func setupPostgresContainer() (*store.PostgresScriptStore, func(), error) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("luahost_test"),
		postgres.WithUsername("luahost"),
		postgres.WithPassword("luahost"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, nil, err
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		_ = container.Terminate(ctx)
		return nil, nil, err
	}
	_ = migrator.Close()

	scriptStore, err := store.Connect(ctx, connStr, store.ConnectOptions{})
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, nil, err
	}

	cleanup := func() {
		scriptStore.Close()
		_ = container.Terminate(ctx)
	}
	return scriptStore, cleanup, nil
}

var _ = Describe("PostgresScriptStore", func() {
	var (
		scriptStore *store.PostgresScriptStore
		cleanup     func()
		ctx         context.Context
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		scriptStore, cleanup, err = setupPostgresContainer()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		cleanup()
	})

	Describe("Save and Read", func() {
		It("round-trips script source", func() {
			Expect(scriptStore.Save(ctx, scripts.Descriptor{Name: "hello", Source: `print("a", "b")`})).To(Succeed())

			got, err := scriptStore.Read(ctx, "hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Source).To(Equal(`print("a", "b")`))
		})

		It("replaces existing source", func() {
			Expect(scriptStore.Save(ctx, scripts.Descriptor{Name: "hello", Source: "print(1)"})).To(Succeed())
			Expect(scriptStore.Save(ctx, scripts.Descriptor{Name: "hello", Source: "print(2)"})).To(Succeed())

			got, err := scriptStore.Read(ctx, "hello")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Source).To(Equal("print(2)"))
		})

		It("reports missing scripts", func() {
			_, err := scriptStore.Read(ctx, "missing")
			Expect(scripts.IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("List", func() {
		It("returns names sorted", func() {
			for _, name := range []string{"zeta", "alpha", "mid"} {
				Expect(scriptStore.Save(ctx, scripts.Descriptor{Name: name})).To(Succeed())
			}

			names, err := scriptStore.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(names).To(Equal([]string{"alpha", "mid", "zeta"}))
		})
	})

	Describe("Delete", func() {
		It("removes the script once", func() {
			Expect(scriptStore.Save(ctx, scripts.Descriptor{Name: "gone"})).To(Succeed())
			Expect(scriptStore.Delete(ctx, "gone")).To(Succeed())

			err := scriptStore.Delete(ctx, "gone")
			Expect(scripts.IsNotFound(err)).To(BeTrue())
		})
	})

	Describe("Run history", func() {
		It("returns recorded runs newest first", func() {
			base := time.Now().UTC().Truncate(time.Millisecond)
			Expect(scriptStore.RecordRun(ctx, scripts.RunRecord{
				ID: "01A", Script: "hello", Outcome: "completed", StartedAt: base, Duration: time.Second,
			})).To(Succeed())
			Expect(scriptStore.RecordRun(ctx, scripts.RunRecord{
				ID: "01B", Script: "hello", Outcome: "failed", ErrorCode: "UNCAUGHT_SCRIPT",
				Message: "boom", StartedAt: base.Add(time.Minute), Duration: 5 * time.Millisecond,
			})).To(Succeed())

			runs, err := scriptStore.Runs(ctx, "hello", 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(2))
			Expect(runs[0].ID).To(Equal("01B"))
			Expect(runs[0].ErrorCode).To(Equal("UNCAUGHT_SCRIPT"))
			Expect(runs[1].ErrorCode).To(BeEmpty())
			Expect(runs[1].Duration).To(Equal(time.Second))
		})
	})
})
