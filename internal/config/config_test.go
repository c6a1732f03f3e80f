package config

import (
	"reflect"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")
	t.Setenv("STORAGE_DRIVER", "memory")
}

func TestFromEnvDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("MAX_UPLOAD_BYTES", "")
	t.Setenv("DELIVERY_CHARGE", "")
	t.Setenv("NOTIFY_BACKOFF", "")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.MaxUploadBytes != DefaultMaxUploadBytes {
		t.Errorf("max upload = %d", cfg.MaxUploadBytes)
	}
	if cfg.DeliveryCharge != DefaultDeliveryCharge {
		t.Errorf("delivery = %v", cfg.DeliveryCharge)
	}
	if cfg.NotifyBackoff != 2*time.Second {
		t.Errorf("backoff = %v", cfg.NotifyBackoff)
	}
	if !cfg.CookieSecure {
		t.Error("cookies should default to secure")
	}
}

func TestFromEnvParsesLists(t *testing.T) {
	setRequired(t)
	t.Setenv("CORS_ORIGINS", "https://myr.pk, https://admin.myr.pk ,")
	t.Setenv("NOTIFY_TO", "owner@myr.pk")
	t.Setenv("SMTP_HOST", "smtp.myr.pk")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	want := []string{"https://myr.pk", "https://admin.myr.pk"}
	if !reflect.DeepEqual(cfg.CORSOrigins, want) {
		t.Errorf("origins = %v", cfg.CORSOrigins)
	}
	if !cfg.SMTPEnabled() {
		t.Error("SMTP should be enabled with a host and a recipient")
	}
}

func TestFromEnvRequiresSecrets(t *testing.T) {
	for _, key := range []string{"SESSION_SECRET", "ADMIN_USERNAME", "ADMIN_PASSWORD_HASH"} {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, "")
			if _, err := FromEnv(); err == nil {
				t.Fatalf("expected error without %s", key)
			}
		})
	}
}

func TestFromEnvMongoNeedsURI(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_DRIVER", "mongo")
	t.Setenv("MONGO_URI", "")
	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error for mongo without MONGO_URI")
	}
}
