// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/holomush/luahost/internal/bridge"
	"github.com/holomush/luahost/internal/executor"
	"github.com/holomush/luahost/internal/observability"
	"github.com/holomush/luahost/internal/output"
	"github.com/holomush/luahost/internal/scripts"
	"github.com/holomush/luahost/internal/session"
	"github.com/holomush/luahost/internal/store"
)

// testEnv holds a migrated PostgreSQL script store and the executor wired to it.
type testEnv struct {
	ctx       context.Context
	cancel    context.CancelFunc
	container testcontainers.Container
	store     *store.PostgresScriptStore
	collector *output.Collector
	exec      *executor.Executor
	api       *httptest.Server
}

func setupTestEnv() (*testEnv, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	env := &testEnv{ctx: ctx, cancel: cancel}

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
		cancel()
		return nil, err
	}
	env.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		env.cleanup()
		return nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		env.cleanup()
		return nil, err
	}
	upErr := migrator.Up()
	_ = migrator.Close()
	if upErr != nil {
		env.cleanup()
		return nil, upErr
	}

	env.store, err = store.Connect(ctx, connStr, store.ConnectOptions{})
	if err != nil {
		env.cleanup()
		return nil, err
	}

	env.collector = &output.Collector{}
	env.exec = executor.New(
		session.NewFactory(bridge.New(nil)),
		env.store,
		output.NewRouter(env.collector.Sinks()),
		executor.WithRecorder(env.store),
	)

	srv := observability.NewServer("127.0.0.1:0", nil)
	srv.MountAPI(env.exec, env.store)
	env.api = httptest.NewServer(srv.Handler())

	return env, nil
}

func (env *testEnv) cleanup() {
	if env.api != nil {
		env.api.Close()
	}
	if env.store != nil {
		env.store.Close()
	}
	if env.container != nil {
		_ = env.container.Terminate(context.Background())
	}
	env.cancel()
}

var _ = Describe("Running scripts from the PostgreSQL store", Ordered, func() {
	var env *testEnv

	BeforeAll(func() {
		var err error
		env, err = setupTestEnv()
		Expect(err).NotTo(HaveOccurred())

		for name, src := range map[string]string{
			"hello":  `print("a", "b")`,
			"broken": `luajava.new("does.not.Exist")`,
			"list":   `local l = luajava.new("container/list.List") l:PushBack(1) print(l:Len())`,
		} {
			Expect(env.store.Save(env.ctx, scripts.Descriptor{Name: name, Source: src})).To(Succeed())
		}
	})

	AfterAll(func() {
		if env != nil {
			env.cleanup()
		}
	})

	It("reports hello as info, normal output and success", func() {
		res := env.exec.Run(env.ctx, "hello")

		Expect(res.Succeeded()).To(BeTrue())
		events := env.collector.Events()
		Expect(events).To(HaveLen(3))
		Expect(events[0].Kind).To(Equal(output.Info))
		Expect(events[0].Text).To(HavePrefix("Time: "))
		Expect(events[1]).To(Equal(output.Event{Kind: output.Normal, Text: "a\tb"}))
		Expect(events[2]).To(Equal(output.Event{Kind: output.Success, Text: executor.SuccessMessage}))
	})

	It("reports an unknown class as an error without success", func() {
		before := len(env.collector.Events())
		res := env.exec.Run(env.ctx, "broken")

		Expect(res.State).To(Equal(executor.Failed))
		events := env.collector.Events()[before:]
		Expect(events).To(HaveLen(2))
		Expect(events[1].Kind).To(Equal(output.Error))
		Expect(events[1].Text).To(ContainSubstring("class not found"))
	})

	It("records every run in the history", func() {
		runs, err := env.store.Runs(env.ctx, "hello", 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(runs).NotTo(BeEmpty())
		Expect(runs[0].Outcome).To(Equal("completed"))

		runs, err = env.store.Runs(env.ctx, "broken", 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(runs).NotTo(BeEmpty())
		Expect(runs[0].Outcome).To(Equal("failed"))
		Expect(runs[0].ErrorCode).To(Equal(bridge.CodeInstantiation))
	})

	It("runs scripts over HTTP", func() {
		resp, err := http.Post(env.api.URL+"/scripts/list/run", "application/json", nil)
		Expect(err).NotTo(HaveOccurred())
		defer func() { _ = resp.Body.Close() }()

		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		var body observability.RunResponse
		Expect(json.NewDecoder(resp.Body).Decode(&body)).To(Succeed())
		Expect(body.State).To(Equal("completed"))
		Expect(body.Events).To(ContainElement(output.Event{Kind: output.Normal, Text: "1"}))
	})

	It("lists stored scripts over HTTP", func() {
		resp, err := http.Get(env.api.URL + "/scripts")
		Expect(err).NotTo(HaveOccurred())
		defer func() { _ = resp.Body.Close() }()

		var body observability.ListResponse
		Expect(json.NewDecoder(resp.Body).Decode(&body)).To(Succeed())
		Expect(body.Scripts).To(Equal([]string{"broken", "hello", "list"}))
	})
})
