package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/opendrive/drivevalue/internal/apiconfig/domain"
	"github.com/opendrive/drivevalue/internal/apiconfig/repository"
	"github.com/opendrive/drivevalue/internal/config"
	"github.com/opendrive/drivevalue/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&domain.Configuration{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	svc := New(Params{
		DB:    dbConn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
		Cfg:   config.Config{ConfigSecret: "unit-test-secret"},
	})
	return svc, dbConn
}

func saveRequest() domain.SaveRequest {
	return domain.SaveRequest{
		AppName:      "DriveValue",
		Username:     "dealer",
		Password:     "upstream-password",
		ClientRef:    "REF-1",
		ComputerName: "WORKSTATION",
		Environment:  "live",
	}
}

func TestSaveLeavesSingleActiveRow(t *testing.T) {
	svc, dbConn := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Save(ctx, saveRequest()); err != nil {
		t.Fatalf("first save: %v", err)
	}

	second := saveRequest()
	second.Username = "other-dealer"
	second.Environment = "sandbox"
	if _, err := svc.Save(ctx, second); err != nil {
		t.Fatalf("second save: %v", err)
	}

	var active int64
	if err := dbConn.Model(&domain.Configuration{}).Where("is_active = ?", true).Count(&active).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if active != 1 {
		t.Fatalf("expected exactly one active row, got %d", active)
	}

	summary, err := svc.GetActive(ctx)
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if summary.Username != "other-dealer" {
		t.Fatalf("expected last writer to win, got %q", summary.Username)
	}
	if summary.Environment != domain.EnvironmentSandbox {
		t.Fatalf("expected sandbox environment, got %q", summary.Environment)
	}
}

func TestSaveRejectsMissingFields(t *testing.T) {
	svc, _ := newTestService(t)

	req := saveRequest()
	req.Password = ""
	if _, err := svc.Save(context.Background(), req); err != domain.ErrInvalidRequest {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestSaveEncryptsPassword(t *testing.T) {
	svc, dbConn := newTestService(t)

	if _, err := svc.Save(context.Background(), saveRequest()); err != nil {
		t.Fatalf("save: %v", err)
	}

	var stored domain.Configuration
	if err := dbConn.First(&stored).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if stored.PasswordEncrypted == "" || stored.PasswordEncrypted == "upstream-password" {
		t.Fatalf("expected encrypted password, got %q", stored.PasswordEncrypted)
	}
}

func TestResolveReturnsDecryptedCredentials(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Save(ctx, saveRequest()); err != nil {
		t.Fatalf("save: %v", err)
	}

	creds, err := svc.Resolve(ctx)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if creds.Password != "upstream-password" {
		t.Fatalf("expected decrypted password, got %q", creds.Password)
	}
	if !creds.Complete() {
		t.Fatal("expected complete credentials")
	}
	if creds.Environment != domain.EnvironmentLive {
		t.Fatalf("expected live environment, got %q", creds.Environment)
	}
}

func TestResolveWithoutConfiguration(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.Resolve(context.Background()); err != domain.ErrConfigurationMissing {
		t.Fatalf("expected ErrConfigurationMissing, got %v", err)
	}
	if _, err := svc.GetActive(context.Background()); err != domain.ErrConfigurationMissing {
		t.Fatalf("expected ErrConfigurationMissing, got %v", err)
	}
}

func TestResolveWrongSecret(t *testing.T) {
	svc, dbConn := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Save(ctx, saveRequest()); err != nil {
		t.Fatalf("save: %v", err)
	}

	node, err := snowflake.NewNode(2)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}
	rotated := New(Params{
		DB:    dbConn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
		Cfg:   config.Config{ConfigSecret: "rotated-secret"},
	})

	if _, err := rotated.Resolve(ctx); err != domain.ErrCredentialDecrypt {
		t.Fatalf("expected ErrCredentialDecrypt, got %v", err)
	}
}
