package services_test

import (
	"context"
	"errors"
	"testing"

	"civicpulse-be/models"
	"civicpulse-be/services"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeEmailSender struct {
	calls int
	err   error
}

func (f *fakeEmailSender) SendResolvedEmail(_ context.Context, _ models.User, _ models.Complaint) error {
	f.calls++
	return f.err
}

type fakeSMSSender struct {
	calls int
	err   error
}

func (f *fakeSMSSender) SendResolvedSMS(_ context.Context, _ models.User, _ models.Complaint) error {
	f.calls++
	return f.err
}

func resolvedComplaint() models.Complaint {
	return models.Complaint{
		ID:     primitive.NewObjectID(),
		Title:  "Pothole",
		Type:   models.CategoryRoads,
		Status: models.StatusResolved,
	}
}

// A citizen with an email and no mobile gets exactly one email attempt
// and zero SMS attempts.
func TestNotifyResolvedEmailOnly(t *testing.T) {
	email := &fakeEmailSender{}
	sms := &fakeSMSSender{}
	dispatcher := services.NewDispatcher(email, sms)
	user := models.User{Name: "Asha", Email: "a@x.com"}

	results := dispatcher.NotifyStatusChange(context.Background(), user, resolvedComplaint(), models.StatusResolved)

	assert.Equal(t, 1, email.calls)
	assert.Equal(t, 0, sms.calls)
	if assert.Len(t, results, 1) {
		assert.Equal(t, "email", results[0].Channel)
		assert.True(t, results[0].Success)
	}
}

func TestNotifyResolvedBothChannels(t *testing.T) {
	email := &fakeEmailSender{}
	sms := &fakeSMSSender{}
	dispatcher := services.NewDispatcher(email, sms)
	user := models.User{Name: "Asha", Email: "a@x.com", Mobile: "+911234567890"}

	results := dispatcher.NotifyStatusChange(context.Background(), user, resolvedComplaint(), models.StatusResolved)

	assert.Equal(t, 1, email.calls)
	assert.Equal(t, 1, sms.calls)
	assert.Len(t, results, 2)
}

func TestNotifyResolvedNoContactDetails(t *testing.T) {
	email := &fakeEmailSender{}
	sms := &fakeSMSSender{}
	dispatcher := services.NewDispatcher(email, sms)

	results := dispatcher.NotifyStatusChange(context.Background(), models.User{Name: "Ghost"}, resolvedComplaint(), models.StatusResolved)

	assert.Equal(t, 0, email.calls)
	assert.Equal(t, 0, sms.calls)
	assert.Empty(t, results)
}

// One failing channel must not stop the other, and failures come back
// as results rather than errors.
func TestNotifyFailuresAreIsolated(t *testing.T) {
	email := &fakeEmailSender{err: errors.New("smtp timeout")}
	sms := &fakeSMSSender{}
	dispatcher := services.NewDispatcher(email, sms)
	user := models.User{Name: "Asha", Email: "a@x.com", Mobile: "+911234567890"}

	results := dispatcher.NotifyStatusChange(context.Background(), user, resolvedComplaint(), models.StatusResolved)

	if assert.Len(t, results, 2) {
		assert.Equal(t, "email", results[0].Channel)
		assert.False(t, results[0].Success)
		assert.Equal(t, "smtp timeout", results[0].Error)
		assert.Equal(t, "sms", results[1].Channel)
		assert.True(t, results[1].Success)
	}
	assert.Equal(t, 1, sms.calls, "SMS must still be attempted after an email failure")
}

func TestNotifyInProgressIsNoop(t *testing.T) {
	email := &fakeEmailSender{}
	sms := &fakeSMSSender{}
	dispatcher := services.NewDispatcher(email, sms)
	user := models.User{Name: "Asha", Email: "a@x.com", Mobile: "+911234567890"}

	results := dispatcher.NotifyStatusChange(context.Background(), user, resolvedComplaint(), models.StatusInProgress)

	assert.Equal(t, 0, email.calls)
	assert.Equal(t, 0, sms.calls)
	assert.Empty(t, results)
}

func TestNotifyPendingSendsNothing(t *testing.T) {
	email := &fakeEmailSender{}
	sms := &fakeSMSSender{}
	dispatcher := services.NewDispatcher(email, sms)
	user := models.User{Name: "Asha", Email: "a@x.com"}

	results := dispatcher.NotifyStatusChange(context.Background(), user, resolvedComplaint(), models.StatusPending)

	assert.Equal(t, 0, email.calls)
	assert.Empty(t, results)
}
