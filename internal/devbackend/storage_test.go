package devbackend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/video-subscription-client/internal/models"
)

func seedStudentWithPlan(t *testing.T, s *Storage) (userID, planID string) {
	t.Helper()
	user, err := s.CreateUser("student@example.com", "Test Student", "hash", models.RoleStudent)
	require.NoError(t, err)
	plan := s.SavePlan(models.SubscriptionPlan{
		Name: "Basic", Price: 100, DurationMonths: 1, IsActive: true,
	})
	return user.ID, plan.ID
}

// TestStorage_SubmitEnrollment тестирует правила конфликта при подаче заявки
func TestStorage_SubmitEnrollment(t *testing.T) {
	s := NewStorage()
	userID, planID := seedStudentWithPlan(t, s)

	enrollment, err := s.SubmitEnrollment(userID, planID, "/uploads/vouchers/r.png")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingPayment, enrollment.Status)
	require.NotNil(t, enrollment.SubscriptionPlan, "вложенный план в ответе")
	require.NotNil(t, enrollment.User, "вложенный пользователь в ответе")

	// пока заявка ждет решения, вторая не принимается
	_, err = s.SubmitEnrollment(userID, planID, "/uploads/vouchers/r2.png")
	assert.ErrorIs(t, err, errDuplicate)

	// несуществующий план
	_, err = s.SubmitEnrollment(userID, "missing", "/uploads/vouchers/r.png")
	assert.ErrorIs(t, err, errNotFound)
}

// TestStorage_ResolveEnrollment тестирует переходы approve/reject
func TestStorage_ResolveEnrollment(t *testing.T) {
	s := NewStorage()
	userID, planID := seedStudentWithPlan(t, s)

	enrollment, err := s.SubmitEnrollment(userID, planID, "/uploads/vouchers/r.png")
	require.NoError(t, err)

	approved, err := s.ResolveEnrollment(enrollment.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, approved.Status)
	assert.Equal(t, models.PaymentCompleted, approved.PaymentStatus)
	assert.Equal(t, float64(100), approved.AmountPaid)
	require.NotNil(t, approved.ExpiresAt)
	assert.True(t, approved.ExpiresAt.After(time.Now().UTC()))
	assert.True(t, s.HasAccess(userID))

	// повторное решение — конфликт, переход не применяется дважды
	_, err = s.ResolveEnrollment(enrollment.ID, true)
	assert.ErrorIs(t, err, errNotPending)
}

// TestStorage_ApproveDeactivatesPrevious тестирует гашение прежней
// действующей подписки при одобрении новой
func TestStorage_ApproveDeactivatesPrevious(t *testing.T) {
	s := NewStorage()
	userID, planID := seedStudentWithPlan(t, s)
	premium := s.SavePlan(models.SubscriptionPlan{
		Name: "Premium", Price: 250, DurationMonths: 1, IsActive: true,
	})

	first, err := s.SubmitEnrollment(userID, planID, "/uploads/vouchers/r1.png")
	require.NoError(t, err)
	_, err = s.ResolveEnrollment(first.ID, true)
	require.NoError(t, err)

	second, err := s.SubmitEnrollment(userID, premium.ID, "/uploads/vouchers/r2.png")
	require.NoError(t, err)
	_, err = s.ResolveEnrollment(second.ID, true)
	require.NoError(t, err)

	current, err := s.CurrentEnrollment(userID)
	require.NoError(t, err)
	assert.Equal(t, premium.ID, current.SubscriptionPlanID)
	assert.Equal(t, models.StatusActive, current.Status)

	// одна действующая подписка на пользователя
	var active int
	for _, e := range s.Enrollments() {
		if e.UserID == userID && e.Status == models.StatusActive {
			active++
		}
	}
	assert.Equal(t, 1, active)
}

// TestStorage_Expiry тестирует истечение подписки по времени:
// статус переводится бэкендом, доступ пропадает
func TestStorage_Expiry(t *testing.T) {
	s := NewStorage()
	userID, planID := seedStudentWithPlan(t, s)

	enrollment, err := s.SubmitEnrollment(userID, planID, "/uploads/vouchers/r.png")
	require.NoError(t, err)
	_, err = s.ResolveEnrollment(enrollment.ID, true)
	require.NoError(t, err)
	require.True(t, s.HasAccess(userID))

	// сдвигаем срок в прошлое напрямую, минуя API
	s.mu.Lock()
	past := time.Now().UTC().Add(-time.Hour)
	s.enrollments[enrollment.ID].ExpiresAt = &past
	s.mu.Unlock()

	assert.False(t, s.HasAccess(userID))

	current, err := s.CurrentEnrollment(userID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusExpired, current.Status)

	// истекшая подписка не мешает новой заявке
	_, err = s.SubmitEnrollment(userID, planID, "/uploads/vouchers/r2.png")
	assert.NoError(t, err)
}

// TestStorage_Catalog тестирует аннотации доступа и фильтр публикации
func TestStorage_Catalog(t *testing.T) {
	s := NewStorage()
	userID, planID := seedStudentWithPlan(t, s)

	s.SaveVideo(models.Video{Title: "Published", VideoURL: "/uploads/videos/a.mp4", IsPublished: true})
	s.SaveVideo(models.Video{Title: "Draft", IsPublished: false})

	catalog := s.Catalog(userID)
	require.Len(t, catalog, 1)
	assert.True(t, catalog[0].IsLocked)
	assert.Empty(t, catalog[0].VideoURL, "ссылка не отдается без доступа")
	require.Len(t, catalog[0].RequiredPlans, 1)
	assert.Equal(t, planID, catalog[0].RequiredPlans[0].ID)

	enrollment, err := s.SubmitEnrollment(userID, planID, "/uploads/vouchers/r.png")
	require.NoError(t, err)
	_, err = s.ResolveEnrollment(enrollment.ID, true)
	require.NoError(t, err)

	catalog = s.Catalog(userID)
	require.Len(t, catalog, 1)
	assert.False(t, catalog[0].IsLocked)
	assert.Equal(t, "/uploads/videos/a.mp4", catalog[0].VideoURL)
	assert.Empty(t, catalog[0].RequiredPlans)
}
