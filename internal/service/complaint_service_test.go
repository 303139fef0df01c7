package service

import (
	"context"
	"testing"

	"backoffice/internal/apperr"
	"backoffice/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newComplaintFixture() (ComplaintReportService, *fakeComplaints, *fakeNotifier) {
	reports := &fakeComplaints{}
	notify := &fakeNotifier{}
	return NewComplaintReportService(&fakeTx{}, reports, &fakeAudit{}, notify), reports, notify
}

func TestComplaintLifecycle(t *testing.T) {
	svc, _, notify := newComplaintFixture()
	ctx := context.Background()

	r, err := svc.Create(ctx, 4, CreateComplaintReportRequest{Title: "Leaking tap", UnitID: uintPtr(12)})
	require.NoError(t, err)
	assert.Equal(t, model.ComplaintOpen, r.Status)
	require.NotNil(t, r.ReporterID)

	r, err = svc.UpdateStatus(ctx, 1, r.ID, UpdateComplaintReportRequest{Status: "in_progress"})
	require.NoError(t, err)
	assert.Nil(t, r.ResolvedAt)

	r, err = svc.UpdateStatus(ctx, 1, r.ID, UpdateComplaintReportRequest{Status: "resolved", ResolutionNote: "washer replaced"})
	require.NoError(t, err)
	assert.NotNil(t, r.ResolvedAt)
	assert.Equal(t, "washer replaced", r.ResolutionNote)

	_, err = svc.UpdateStatus(ctx, 1, r.ID, UpdateComplaintReportRequest{Status: "open"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	assert.Equal(t, []string{EventComplaintCreated, EventComplaintStatusChanged, EventComplaintStatusChanged}, notify.events)
}

func TestComplaintOnlyStatusCanBeUpdated(t *testing.T) {
	svc, _, _ := newComplaintFixture()
	ctx := context.Background()
	r, err := svc.Create(ctx, 4, CreateComplaintReportRequest{Title: "Broken lift"})
	require.NoError(t, err)

	title := "Broken elevator"
	_, err = svc.UpdateStatus(ctx, 1, r.ID, UpdateComplaintReportRequest{Status: "in_progress", Title: &title})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, "Only status can be updated", apperr.PublicMessage(err))
}

func TestComplaintUnknownStatusAndMissing(t *testing.T) {
	svc, _, _ := newComplaintFixture()
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, 1, 1, UpdateComplaintReportRequest{Status: "closed"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.UpdateStatus(ctx, 1, 42, UpdateComplaintReportRequest{Status: "resolved"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
