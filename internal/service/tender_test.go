package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/civicfix/civicfix-api/internal/model"
)

func TestCreateTenderDefaults(t *testing.T) {
	reports := newFakeReportStore()
	tenders := newFakeTenderStore()
	svc := NewTenderService(tenders, reports)
	report := seedReport(t, reports, model.StatusPending)

	tender, err := svc.Create(context.Background(), model.CreateTenderRequest{
		ReportID: report.ID,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if tender.Budget != TenderBudgetPending {
		t.Errorf("budget = %q, want %q", tender.Budget, TenderBudgetPending)
	}
	if time.Until(tender.Deadline) < DefaultTenderWindow-time.Minute {
		t.Errorf("deadline = %v, want about %v from now", tender.Deadline, DefaultTenderWindow)
	}
	if tender.Report == nil || tender.Report.ID != report.ID {
		t.Error("report not embedded in created tender")
	}
}

func TestCreateTenderExplicitDeadline(t *testing.T) {
	reports := newFakeReportStore()
	svc := NewTenderService(newFakeTenderStore(), reports)
	report := seedReport(t, reports, model.StatusPending)

	deadline := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	tender, err := svc.Create(context.Background(), model.CreateTenderRequest{
		ReportID: report.ID,
		Budget:   "$5,000",
		Deadline: deadline.Format(time.RFC3339),
		Urgent:   true,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if tender.Budget != "$5,000" {
		t.Errorf("budget = %q, want $5,000", tender.Budget)
	}
	if !tender.Deadline.Equal(deadline) {
		t.Errorf("deadline = %v, want %v", tender.Deadline, deadline)
	}
	if !tender.Urgent {
		t.Error("urgent flag lost")
	}
}

func TestCreateTenderBadDeadline(t *testing.T) {
	reports := newFakeReportStore()
	svc := NewTenderService(newFakeTenderStore(), reports)
	report := seedReport(t, reports, model.StatusPending)

	_, err := svc.Create(context.Background(), model.CreateTenderRequest{
		ReportID: report.ID,
		Deadline: "next tuesday",
	})
	if !errors.Is(err, model.ErrInvalidDeadline) {
		t.Errorf("error = %v, want ErrInvalidDeadline", err)
	}
}

func TestCreateTenderDuplicate(t *testing.T) {
	reports := newFakeReportStore()
	tenders := newFakeTenderStore()
	svc := NewTenderService(tenders, reports)
	report := seedReport(t, reports, model.StatusPending)

	if _, err := svc.Create(context.Background(), model.CreateTenderRequest{ReportID: report.ID}); err != nil {
		t.Fatalf("first Create returned error: %v", err)
	}

	_, err := svc.Create(context.Background(), model.CreateTenderRequest{ReportID: report.ID})
	if !errors.Is(err, model.ErrTenderExists) {
		t.Errorf("error = %v, want ErrTenderExists", err)
	}
}

func TestCreateTenderUnknownReport(t *testing.T) {
	svc := NewTenderService(newFakeTenderStore(), newFakeReportStore())

	_, err := svc.Create(context.Background(), model.CreateTenderRequest{ReportID: 42})
	if !errors.Is(err, model.ErrReportNotFound) {
		t.Errorf("error = %v, want ErrReportNotFound", err)
	}
}
