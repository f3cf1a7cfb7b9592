package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tabadex/tabadex-bot/internal/core/application"
	"github.com/tabadex/tabadex-bot/internal/core/domain"
)

const adminID = int64(7)

type fakeUserRepository struct {
	domain.UserRepository
	activeIDs []int64
}

func (r *fakeUserRepository) GetActiveUserIDs(
	_ context.Context,
) ([]int64, error) {
	return r.activeIDs, nil
}

type recordingSettingRepository struct {
	domain.SettingRepository
	mtx    sync.Mutex
	values map[string]string
}

func (r *recordingSettingRepository) GetSetting(
	_ context.Context, key, defaultValue string,
) (string, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if v, ok := r.values[key]; ok {
		return v, nil
	}
	return defaultValue, nil
}

func (r *recordingSettingRepository) SetSetting(
	_ context.Context, key, value string,
) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	if r.values == nil {
		r.values = make(map[string]string)
	}
	r.values[key] = value
	return nil
}

type fakeSender struct {
	mtx     sync.Mutex
	sent    []int64
	texts   map[int64][]string
	failFor map[int64]bool
}

func (s *fakeSender) SendMessage(
	_ context.Context, userID int64, text string,
) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.failFor[userID] {
		return errors.New("user blocked the bot")
	}
	s.sent = append(s.sent, userID)
	if s.texts == nil {
		s.texts = make(map[int64][]string)
	}
	s.texts[userID] = append(s.texts[userID], text)
	return nil
}

func (s *fakeSender) sentTo(userID int64) []string {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.texts[userID]
}

func newTestAdmin(
	users *fakeUserRepository, sender *fakeSender,
) (application.AdminService, *recordingSettingRepository) {
	settings := &recordingSettingRepository{}
	svc := application.NewAdminService(
		[]int64{adminID}, users, nil, nil, settings, sender,
	)
	return svc, settings
}

func TestNonAdminIsRejected(t *testing.T) {
	svc, _ := newTestAdmin(&fakeUserRepository{}, &fakeSender{})

	require.False(t, svc.IsAdmin(999))
	require.True(t, svc.IsAdmin(adminID))

	_, err := svc.GetUsers(context.Background(), 999, 1)
	require.ErrorIs(t, err, application.ErrNotAdmin)
	err = svc.SetMarkup(context.Background(), 999, "1")
	require.ErrorIs(t, err, application.ErrNotAdmin)
	_, err = svc.Broadcast(context.Background(), 999, "hi")
	require.ErrorIs(t, err, application.ErrNotAdmin)
}

func TestSetMarkupValidatesRange(t *testing.T) {
	svc, settings := newTestAdmin(&fakeUserRepository{}, &fakeSender{})
	ctx := context.Background()

	tests := []struct {
		value string
		valid bool
	}{
		{"0", true},
		{"0.5", true},
		{"99.999", true},
		{"100", false},
		{"150", false},
		{"-0.1", false},
		{"abc", false},
		{"", false},
	}

	for _, tt := range tests {
		err := svc.SetMarkup(ctx, adminID, tt.value)
		if tt.valid {
			require.NoError(t, err, "value %q", tt.value)
		} else {
			require.ErrorIs(t, err, application.ErrInvalidMarkup, "value %q", tt.value)
		}
	}

	markup, err := svc.GetMarkup(ctx, adminID)
	require.NoError(t, err)
	require.Equal(t, "99.999", markup)
	require.Equal(t, "99.999", settings.values[domain.MarkupPercentageKey])
}

func TestGetMarkupDefaultsWhenUnset(t *testing.T) {
	svc, _ := newTestAdmin(&fakeUserRepository{}, &fakeSender{})

	markup, err := svc.GetMarkup(context.Background(), adminID)
	require.NoError(t, err)
	require.Equal(t, domain.DefaultMarkupPercentage, markup)
}

func TestBroadcastIsolatesPerUserFailures(t *testing.T) {
	users := &fakeUserRepository{activeIDs: []int64{1, 2, 3, 4, 5}}
	sender := &fakeSender{failFor: map[int64]bool{3: true}}
	svc, _ := newTestAdmin(users, sender)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := svc.Broadcast(ctx, adminID, "maintenance tonight")
	require.NoError(t, err)
	require.Equal(t, 4, result.Sent)
	require.Equal(t, 1, result.Failed)
	require.ElementsMatch(t, []int64{1, 2, 4, 5}, sender.sent)
}

func TestBroadcastRejectsEmptyMessage(t *testing.T) {
	svc, _ := newTestAdmin(&fakeUserRepository{}, &fakeSender{})

	_, err := svc.Broadcast(context.Background(), adminID, "   ")
	require.ErrorIs(t, err, application.ErrEmptyBroadcast)
}
