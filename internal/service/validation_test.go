package service

import (
	"context"
	"errors"
	"testing"

	"infra-catalog/internal/apperrors"
)

func assertValidationError(t *testing.T, err error, field string) {
	t.Helper()
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected a validation error, got %v", err)
	}
	if appErr.Field != field || appErr.Status != 400 {
		t.Fatalf("expected 400 on field %q, got %+v", field, appErr)
	}
}

func TestCatalogServiceRejectsBlankName(t *testing.T) {
	// validation happens before any repository access
	svc := NewCatalogService(nil)

	for name, run := range map[string]func() error{
		"create empty": func() error {
			_, err := svc.Create(context.Background(), "", "desc")
			return err
		},
		"create whitespace": func() error {
			_, err := svc.Create(context.Background(), "   ", "desc")
			return err
		},
		"update whitespace": func() error {
			_, err := svc.Update(context.Background(), 1, " \t ", "desc")
			return err
		},
	} {
		t.Run(name, func(t *testing.T) {
			assertValidationError(t, run(), "name")
		})
	}
}

func TestServerServiceRejectsBlankName(t *testing.T) {
	svc := NewServerService(nil)

	_, err := svc.Create(context.Background(), ServerInput{Name: "   ", IPAddress: "10.0.0.1"})
	assertValidationError(t, err, "name")

	_, err = svc.Update(context.Background(), 1, ServerInput{})
	assertValidationError(t, err, "name")
}

func TestUploadServiceRejectsMissingFile(t *testing.T) {
	svc := NewUploadService(nil)

	_, err := svc.CreateUpload(context.Background(), "", "/tmp/x", 1, "prefix")
	assertValidationError(t, err, "file")

	_, err = svc.CreateUpload(context.Background(), "x.bin", "", 1, "prefix")
	assertValidationError(t, err, "file")
}
