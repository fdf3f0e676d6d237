// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/icyfeed/icy/internal/auth"
	"github.com/icyfeed/icy/internal/auth/postgres"
)

func newUser(username string) *auth.User {
	u, err := auth.NewUser(username, "Nick", "$argon2id$hash", username+"@example.com", "", time.Now())
	Expect(err).NotTo(HaveOccurred())
	u.CreatedAt = u.CreatedAt.UTC().Truncate(time.Microsecond)
	u.UpdatedAt = u.CreatedAt
	return u
}

var _ = Describe("UserRepository", func() {
	var (
		ctx   context.Context
		users *postgres.UserRepository
	)

	BeforeEach(func() {
		ctx = context.Background()
		truncateAll(ctx)
		users = postgres.NewUserRepository(pool)
	})

	It("round-trips a user", func() {
		u := newUser("alice01")
		Expect(users.Create(ctx, u)).To(Succeed())

		byName, err := users.GetByUsername(ctx, "alice01")
		Expect(err).NotTo(HaveOccurred())
		Expect(byName.ID).To(Equal(u.ID))
		Expect(byName.Status).To(Equal(auth.StatusInAction))

		byID, err := users.GetByID(ctx, u.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(byID.Username).To(Equal("alice01"))
	})

	It("rejects a duplicate username", func() {
		Expect(users.Create(ctx, newUser("alice01"))).To(Succeed())
		err := users.Create(ctx, newUser("alice01"))
		Expect(errors.Is(err, auth.ErrAlreadyExists)).To(BeTrue())
	})

	It("reports missing users", func() {
		_, err := users.GetByUsername(ctx, "ghost")
		Expect(errors.Is(err, auth.ErrNotFound)).To(BeTrue())
	})

	It("persists a withdrawal", func() {
		u := newUser("alice01")
		Expect(users.Create(ctx, u)).To(Succeed())
		Expect(u.TransitionTo(auth.StatusSecession, time.Now())).To(Succeed())
		Expect(users.Update(ctx, u)).To(Succeed())

		got, err := users.GetByID(ctx, u.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.IsWithdrawn()).To(BeTrue())
	})

	It("upgrades a hash without touching a withdrawal", func() {
		u := newUser("alice01")
		Expect(users.Create(ctx, u)).To(Succeed())
		stale := *u

		Expect(u.TransitionTo(auth.StatusSecession, time.Now())).To(Succeed())
		Expect(users.Update(ctx, u)).To(Succeed())

		changed, err := users.UpdatePasswordHash(ctx, stale.ID, stale.PasswordHash, "$argon2id$upgraded", time.Now())
		Expect(err).NotTo(HaveOccurred())
		Expect(changed).To(BeTrue())

		got, err := users.GetByID(ctx, u.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Status).To(Equal(auth.StatusSecession))
		Expect(got.PasswordHash).To(Equal("$argon2id$upgraded"))
	})

	It("skips a hash upgrade when the password changed meanwhile", func() {
		u := newUser("alice01")
		Expect(users.Create(ctx, u)).To(Succeed())
		oldHash := u.PasswordHash

		u.PasswordHash = "$argon2id$changed"
		Expect(users.Update(ctx, u)).To(Succeed())

		changed, err := users.UpdatePasswordHash(ctx, u.ID, oldHash, "$argon2id$upgraded", time.Now())
		Expect(err).NotTo(HaveOccurred())
		Expect(changed).To(BeFalse())

		got, err := users.GetByID(ctx, u.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.PasswordHash).To(Equal("$argon2id$changed"))
	})
})

var _ = Describe("RefreshTokenRepository", func() {
	var (
		ctx    context.Context
		user   *auth.User
		tokens *postgres.RefreshTokenRepository
	)

	BeforeEach(func() {
		ctx = context.Background()
		truncateAll(ctx)
		user = newUser("alice01")
		Expect(postgres.NewUserRepository(pool).Create(ctx, user)).To(Succeed())
		tokens = postgres.NewRefreshTokenRepository(pool)
	})

	It("keeps a single row per user across saves", func() {
		now := time.Now().UTC().Truncate(time.Microsecond)
		first, firstValue, err := auth.NewRefreshToken(user.ID, now)
		Expect(err).NotTo(HaveOccurred())
		Expect(tokens.Save(ctx, first)).To(Succeed())

		second, secondValue, err := auth.NewRefreshToken(user.ID, now.Add(time.Hour))
		Expect(err).NotTo(HaveOccurred())
		Expect(tokens.Save(ctx, second)).To(Succeed())
		Expect(second.ID).To(Equal(first.ID))

		var count int
		Expect(pool.QueryRow(ctx, `SELECT count(*) FROM refresh_tokens WHERE user_id = $1`, user.ID.String()).
			Scan(&count)).To(Succeed())
		Expect(count).To(Equal(1))

		_, err = tokens.GetByTokenHash(ctx, auth.HashRefreshToken(firstValue))
		Expect(errors.Is(err, auth.ErrNotFound)).To(BeTrue())

		got, err := tokens.GetByTokenHash(ctx, auth.HashRefreshToken(secondValue))
		Expect(err).NotTo(HaveOccurred())
		Expect(got.ExpiresAt).To(BeTemporally("==", now.Add(time.Hour).Add(auth.RefreshTokenExpiry)))
	})

	It("stays single under concurrent first logins", func() {
		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				token, _, err := auth.NewRefreshToken(user.ID, time.Now())
				Expect(err).NotTo(HaveOccurred())
				Expect(tokens.Save(ctx, token)).To(Succeed())
			}()
		}
		wg.Wait()

		var count int
		Expect(pool.QueryRow(ctx, `SELECT count(*) FROM refresh_tokens`).Scan(&count)).To(Succeed())
		Expect(count).To(Equal(1))
	})
})

var _ = Describe("AuditLogRepository", func() {
	It("lists newest first with a limit", func() {
		ctx := context.Background()
		truncateAll(ctx)
		repo := postgres.NewAuditLogRepository(pool)
		audit, err := auth.NewAuditLog(repo, nil)
		Expect(err).NotTo(HaveOccurred())

		audit.Record(ctx, "alice01", auth.ActionLogin)
		time.Sleep(time.Millisecond)
		audit.Record(ctx, "alice01", auth.ActionLogout)
		audit.Record(ctx, "bob01", auth.ActionLogin)

		entries, err := repo.ListByUsername(ctx, "alice01", 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(2))
		Expect(entries[0].Action).To(Equal(auth.ActionLogout))

		entries, err = repo.ListByUsername(ctx, "alice01", 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))
	})
})

var _ = Describe("Transactor", func() {
	It("serializes concurrent withdrawals of one account", func() {
		ctx := context.Background()
		truncateAll(ctx)

		users := postgres.NewUserRepository(pool)
		audit := &countingAudit{}
		auditLog, err := auth.NewAuditLog(audit, nil)
		Expect(err).NotTo(HaveOccurred())

		hasher := auth.NewArgon2idHasher()
		hash, err := hasher.Hash("abcd123!")
		Expect(err).NotTo(HaveOccurred())
		u, err := auth.NewUser("alice01", "Nick", hash, "a@example.com", "", time.Now())
		Expect(err).NotTo(HaveOccurred())
		Expect(users.Create(ctx, u)).To(Succeed())

		svc, err := auth.NewAccountService(auth.AccountServiceConfig{
			Users:      users,
			Hasher:     hasher,
			Transactor: postgres.NewTransactor(pool),
			Audit:      auditLog,
		})
		Expect(err).NotTo(HaveOccurred())

		results := make(chan bool, 2)
		var wg sync.WaitGroup
		for range 2 {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				ok, err := svc.Withdraw(ctx, "alice01", "abcd123!")
				Expect(err).NotTo(HaveOccurred())
				results <- ok
			}()
		}
		wg.Wait()
		close(results)

		var succeeded int
		for ok := range results {
			if ok {
				succeeded++
			}
		}
		Expect(succeeded).To(Equal(1))
		Expect(audit.count()).To(Equal(1))
	})
})

type countingAudit struct {
	mu sync.Mutex
	n  int
}

func (c *countingAudit) Append(context.Context, *auth.AuditEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return nil
}

func (c *countingAudit) ListByUsername(context.Context, string, int) ([]*auth.AuditEntry, error) {
	return nil, nil
}

func (c *countingAudit) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}
