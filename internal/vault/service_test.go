package vault_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/office-hr/internal"
	"github.com/frahmantamala/office-hr/internal/approval/approvaltest"
	"github.com/frahmantamala/office-hr/internal/core/security"
	"github.com/frahmantamala/office-hr/internal/permission"
	"github.com/frahmantamala/office-hr/internal/vault"
	"github.com/frahmantamala/office-hr/internal/vault/vaulttest"
)

func TestVault(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Vault Suite")
}

var _ = Describe("Vault", func() {
	var (
		repo    *vaulttest.MemoryRepository
		audit   *approvaltest.Recorder
		hasher  *security.Hasher
		service *vault.Service
		ctx     context.Context
		owner   internal.Identity
		peer    internal.Identity
		md      internal.Identity
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = vaulttest.NewMemoryRepository()
		audit = &approvaltest.Recorder{}
		hasher = security.NewHasher(0)
		service = vault.NewService(repo, hasher, audit, logger)
		ctx = context.Background()
		owner = internal.Identity{CompanyID: "c1", UserID: "usr_owner", Role: permission.RoleEmployee}
		peer = internal.Identity{CompanyID: "c1", UserID: "usr_peer", Role: permission.RoleHR}
		md = internal.Identity{CompanyID: "c1", UserID: "usr_md", Role: permission.RoleMD}
	})

	create := func(actor internal.Identity, title string) *vault.Item {
		item, err := service.Create(ctx, actor, vault.CreateItemDTO{
			Title:    title,
			Username: "ops@acme.io",
			Password: "hunter2-long",
			Notes:    "recovery code 1234",
			Tags:     []string{" Infra ", "infra", "AWS"},
		})
		Expect(err).NotTo(HaveOccurred())
		return item
	}

	It("stores only hashes and returns masked secrets", func() {
		item := create(owner, "AWS root")
		Expect(item.Password).To(Equal(vault.Mask))
		Expect(item.Notes).To(Equal(vault.Mask))
		Expect(item.Tags).To(Equal([]string{"infra", "aws"}))
		Expect(item.OwnerUserID).To(Equal("usr_owner"))

		stored := repo.Stored(item.ID)
		Expect(stored.PasswordHash).NotTo(ContainSubstring("hunter2"))
		Expect(hasher.VerifySecret("hunter2-long", security.HashedSecret{
			Hash: stored.PasswordHash, Salt: stored.PasswordSalt, Iterations: stored.PasswordIterations,
		})).To(BeTrue())

		body, err := json.Marshal(item)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(body)).NotTo(ContainSubstring("hunter2"))
		Expect(string(body)).NotTo(ContainSubstring(stored.PasswordHash))
		Expect(audit.Actions()).To(Equal([]string{"CREATE"}))
	})

	It("leaves notes empty when none were given", func() {
		item, err := service.Create(ctx, owner, vault.CreateItemDTO{Title: "Wifi", Password: "p4ssword"})
		Expect(err).NotTo(HaveOccurred())
		Expect(item.Notes).To(BeEmpty())
		Expect(item.Tags).To(BeEmpty())
	})

	It("keeps items private to their owner except for MD", func() {
		item := create(owner, "AWS root")
		create(peer, "Payroll portal")

		_, err := service.Get(ctx, peer, item.ID)
		Expect(err).To(MatchError(vault.ErrNoAccess))
		title := "Renamed"
		_, err = service.Update(ctx, peer, item.ID, vault.UpdateItemDTO{Title: &title})
		Expect(err).To(MatchError(vault.ErrNoAccess))
		Expect(service.Delete(ctx, peer, item.ID)).To(MatchError(vault.ErrNoAccess))

		got, err := service.Get(ctx, md, item.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Title).To(Equal("AWS root"))

		mine, total, err := service.List(ctx, owner, vault.ListFilter{})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(BeEquivalentTo(1))
		Expect(mine[0].ID).To(Equal(item.ID))

		_, total, err = service.List(ctx, md, vault.ListFilter{})
		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(BeEquivalentTo(2))
	})

	It("hides items of other companies", func() {
		item := create(owner, "AWS root")
		outsider := internal.Identity{CompanyID: "c2", UserID: "usr_md2", Role: permission.RoleMD}

		_, err := service.Get(ctx, outsider, item.ID)
		Expect(err).To(MatchError(vault.ErrItemNotFound))
	})

	Describe("ResetSecret", func() {
		It("replaces the password and keeps the notes", func() {
			item := create(owner, "AWS root")
			before := repo.Stored(item.ID)
			password := "correct-horse"

			got, err := service.ResetSecret(ctx, owner, item.ID, vault.ResetSecretDTO{Password: &password})
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Password).To(Equal(vault.Mask))

			after := repo.Stored(item.ID)
			Expect(after.PasswordHash).NotTo(Equal(before.PasswordHash))
			Expect(after.NotesHash).To(Equal(before.NotesHash))
			Expect(hasher.VerifySecret(password, security.HashedSecret{
				Hash: after.PasswordHash, Salt: after.PasswordSalt, Iterations: after.PasswordIterations,
			})).To(BeTrue())
			Expect(audit.Actions()).To(Equal([]string{"CREATE", "RESET_SECRET"}))
		})

		It("clears the notes with an empty value", func() {
			item := create(owner, "AWS root")
			empty := ""

			got, err := service.ResetSecret(ctx, md, item.ID, vault.ResetSecretDTO{Notes: &empty})
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Notes).To(BeEmpty())
			Expect(repo.Stored(item.ID).NotesSalt).To(BeEmpty())
		})

		It("requires at least one secret", func() {
			item := create(owner, "AWS root")
			_, err := service.ResetSecret(ctx, owner, item.ID, vault.ResetSecretDTO{})
			Expect(internal.AsAppError(err).Type).To(Equal(internal.ErrorTypeValidation))
		})
	})

	It("updates descriptive fields and deletes", func() {
		item := create(owner, "AWS root")
		title, tags := "AWS billing", []string{"finance"}

		got, err := service.Update(ctx, owner, item.ID, vault.UpdateItemDTO{Title: &title, Tags: &tags})
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Title).To(Equal("AWS billing"))
		Expect(got.Tags).To(Equal([]string{"finance"}))
		Expect(got.Username).To(Equal("ops@acme.io"))

		Expect(service.Delete(ctx, owner, item.ID)).To(Succeed())
		_, err = service.Get(ctx, owner, item.ID)
		Expect(err).To(MatchError(vault.ErrItemNotFound))
		Expect(audit.Actions()).To(Equal([]string{"CREATE", "UPDATE", "DELETE"}))
	})

	DescribeTable("rejects invalid items",
		func(dto vault.CreateItemDTO) {
			_, err := service.Create(ctx, owner, dto)
			Expect(internal.AsAppError(err).Type).To(Equal(internal.ErrorTypeValidation))
		},
		Entry("missing password", vault.CreateItemDTO{Title: "Wifi"}),
		Entry("short title", vault.CreateItemDTO{Title: "W", Password: "x"}),
		Entry("too many tags", vault.CreateItemDTO{Title: "Wifi", Password: "x", Tags: []string{
			"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m", "n", "o", "p", "q", "r", "s", "t", "u",
		}}),
	)
})
