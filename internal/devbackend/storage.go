package devbackend

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/video-subscription-client/internal/models"
)

// Ошибки хранилища в памяти.
var (
	errNotFound   = errors.New("not found")
	errEmailTaken = errors.New("email already registered")
	errDuplicate  = errors.New("active or pending enrollment already exists")
	errNotPending = errors.New("enrollment is not awaiting approval")
)

// Storage хранилище dev-бэкенда в памяти процесса.
type Storage struct {
	mu            sync.RWMutex
	users         map[string]*models.User
	passwords     map[string]string // userID -> bcrypt-хэш
	plans         map[string]*models.SubscriptionPlan
	enrollments   map[string]*models.Enrollment
	currentByUser map[string]string // userID -> id текущей записи
	categories    map[string]*models.Category
	videos        map[string]*models.Video
}

// NewStorage создает пустое хранилище.
func NewStorage() *Storage {
	return &Storage{
		users:         make(map[string]*models.User),
		passwords:     make(map[string]string),
		plans:         make(map[string]*models.SubscriptionPlan),
		enrollments:   make(map[string]*models.Enrollment),
		currentByUser: make(map[string]string),
		categories:    make(map[string]*models.Category),
		videos:        make(map[string]*models.Video),
	}
}

// --- пользователи ---

// CreateUser сохраняет пользователя с хэшем пароля.
func (s *Storage) CreateUser(email, fullName, passwordHash string, role models.Role) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return nil, errEmailTaken
		}
	}
	now := time.Now().UTC()
	user := &models.User{
		ID:        uuid.NewString(),
		Email:     email,
		FullName:  fullName,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users[user.ID] = user
	s.passwords[user.ID] = passwordHash
	u := *user
	return &u, nil
}

// UserByEmail возвращает пользователя и хэш пароля по email.
func (s *Storage) UserByEmail(email string) (*models.User, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			copied := *u
			return &copied, s.passwords[u.ID], nil
		}
	}
	return nil, "", errNotFound
}

// User возвращает пользователя по идентификатору.
func (s *Storage) User(id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, errNotFound
	}
	copied := *u
	return &copied, nil
}

// Users возвращает всех пользователей, отсортированных по дате создания.
func (s *Storage) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// UpdateUser обновляет поля пользователя.
func (s *Storage) UpdateUser(id, email, fullName string, role models.Role, isActive bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, errNotFound
	}
	u.Email = email
	u.FullName = fullName
	u.Role = role
	u.IsActive = isActive
	u.UpdatedAt = time.Now().UTC()
	copied := *u
	return &copied, nil
}

// DeleteUser удаляет пользователя.
func (s *Storage) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return errNotFound
	}
	delete(s.users, id)
	delete(s.passwords, id)
	return nil
}

// --- планы ---

// SavePlan сохраняет новый план.
func (s *Storage) SavePlan(plan models.SubscriptionPlan) *models.SubscriptionPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	plan.ID = uuid.NewString()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	s.plans[plan.ID] = &plan
	copied := plan
	return &copied
}

// Plan возвращает план по идентификатору.
func (s *Storage) Plan(id string) (*models.SubscriptionPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.plans[id]
	if !ok {
		return nil, errNotFound
	}
	copied := *p
	return &copied, nil
}

// Plans возвращает планы; onlyActive оставляет только предлагаемые студентам.
func (s *Storage) Plans(onlyActive bool) []models.SubscriptionPlan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SubscriptionPlan, 0, len(s.plans))
	for _, p := range s.plans {
		if onlyActive && !p.IsActive {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	return out
}

// UpdatePlan заменяет изменяемые поля плана.
func (s *Storage) UpdatePlan(id string, update models.SubscriptionPlan) (*models.SubscriptionPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[id]
	if !ok {
		return nil, errNotFound
	}
	p.Name = update.Name
	p.Description = update.Description
	p.Price = update.Price
	p.DurationMonths = update.DurationMonths
	p.IsActive = update.IsActive
	p.Features = update.Features
	if update.Videos != nil {
		p.Videos = update.Videos
	}
	p.UpdatedAt = time.Now().UTC()
	copied := *p
	return &copied, nil
}

// TogglePlan переключает признак isActive плана.
func (s *Storage) TogglePlan(id string) (*models.SubscriptionPlan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[id]
	if !ok {
		return nil, errNotFound
	}
	p.IsActive = !p.IsActive
	p.UpdatedAt = time.Now().UTC()
	copied := *p
	return &copied, nil
}

// DeletePlan удаляет план.
func (s *Storage) DeletePlan(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.plans[id]; !ok {
		return errNotFound
	}
	delete(s.plans, id)
	return nil
}

// --- записи на планы ---

// SubmitEnrollment создает заявку pending_payment для пользователя.
// Пока текущая заявка не разрешена (pending или действующая подписка на тот
// же план), повторная подача отклоняется как дубликат.
func (s *Storage) SubmitEnrollment(userID, planID, voucherURL string) (*models.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.plans[planID]; !ok {
		return nil, errNotFound
	}
	if currentID, ok := s.currentByUser[userID]; ok {
		current := s.enrollments[currentID]
		s.refreshExpiryLocked(current)
		if current.Status == models.StatusPendingPayment {
			return nil, errDuplicate
		}
		if current.Status == models.StatusActive && current.SubscriptionPlanID == planID {
			return nil, errDuplicate
		}
	}

	now := time.Now().UTC()
	enrollment := &models.Enrollment{
		ID:                 uuid.NewString(),
		UserID:             userID,
		SubscriptionPlanID: planID,
		Status:             models.StatusPendingPayment,
		PaymentStatus:      models.PaymentPending,
		PaymentVoucherURL:  voucherURL,
		EnrolledAt:         now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	s.enrollments[enrollment.ID] = enrollment
	s.currentByUser[userID] = enrollment.ID
	return s.enrollmentViewLocked(enrollment), nil
}

// CurrentEnrollment возвращает текущую запись пользователя.
func (s *Storage) CurrentEnrollment(userID string) (*models.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.currentByUser[userID]
	if !ok {
		return nil, errNotFound
	}
	enrollment := s.enrollments[id]
	s.refreshExpiryLocked(enrollment)
	return s.enrollmentViewLocked(enrollment), nil
}

// Enrollments возвращает все записи, новые первыми.
func (s *Storage) Enrollments() []models.Enrollment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Enrollment, 0, len(s.enrollments))
	for _, e := range s.enrollments {
		s.refreshExpiryLocked(e)
		out = append(out, *s.enrollmentViewLocked(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// ResolveEnrollment выполняет административный переход заявки из
// pending_payment: approve=true в active, approve=false в inactive.
// Любой другой исходный статус — конфликт, переход не применяется повторно.
func (s *Storage) ResolveEnrollment(id string, approve bool) (*models.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	enrollment, ok := s.enrollments[id]
	if !ok {
		return nil, errNotFound
	}
	if enrollment.Status != models.StatusPendingPayment {
		return nil, errNotPending
	}

	now := time.Now().UTC()
	if approve {
		enrollment.Status = models.StatusActive
		enrollment.PaymentStatus = models.PaymentCompleted
		if plan, ok := s.plans[enrollment.SubscriptionPlanID]; ok {
			enrollment.AmountPaid = plan.Price
			expires := now.AddDate(0, plan.DurationMonths, 0)
			enrollment.ExpiresAt = &expires
		}
		// прежняя действующая подписка пользователя гасится
		for _, other := range s.enrollments {
			if other.UserID == enrollment.UserID && other.ID != enrollment.ID && other.Status == models.StatusActive {
				other.Status = models.StatusInactive
				other.UpdatedAt = now
			}
		}
	} else {
		enrollment.Status = models.StatusInactive
		enrollment.PaymentStatus = models.PaymentFailed
	}
	enrollment.UpdatedAt = now
	return s.enrollmentViewLocked(enrollment), nil
}

// HasAccess сообщает, дает ли какая-нибудь запись пользователя доступ
// к закрытому контенту прямо сейчас.
func (s *Storage) HasAccess(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasAccessLocked(userID)
}

func (s *Storage) hasAccessLocked(userID string) bool {
	for _, e := range s.enrollments {
		if e.UserID != userID {
			continue
		}
		s.refreshExpiryLocked(e)
		if e.Status == models.StatusActive {
			return true
		}
	}
	return false
}

// refreshExpiryLocked переводит действующую запись в expired по времени.
// Истечение — забота бэкенда, клиент его не вычисляет.
func (s *Storage) refreshExpiryLocked(e *models.Enrollment) {
	if e.Status == models.StatusActive && e.ExpiresAt != nil && e.ExpiresAt.Before(time.Now().UTC()) {
		e.Status = models.StatusExpired
		e.UpdatedAt = time.Now().UTC()
	}
}

// enrollmentViewLocked возвращает копию записи с вложенными планом и
// пользователем, как отдает продакшен-бэкенд.
func (s *Storage) enrollmentViewLocked(e *models.Enrollment) *models.Enrollment {
	view := *e
	if plan, ok := s.plans[e.SubscriptionPlanID]; ok {
		copied := *plan
		view.SubscriptionPlan = &copied
	}
	if user, ok := s.users[e.UserID]; ok {
		copied := *user
		view.User = &copied
	}
	return &view
}

// --- категории ---

// SaveCategory сохраняет категорию.
func (s *Storage) SaveCategory(name, description string) *models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	category := &models.Category{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.categories[category.ID] = category
	copied := *category
	return &copied
}

// Categories возвращает все категории.
func (s *Storage) Categories() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Category, 0, len(s.categories))
	for _, c := range s.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// UpdateCategory обновляет категорию.
func (s *Storage) UpdateCategory(id, name, description string) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return nil, errNotFound
	}
	c.Name = name
	c.Description = description
	c.UpdatedAt = time.Now().UTC()
	copied := *c
	return &copied, nil
}

// DeleteCategory удаляет категорию.
func (s *Storage) DeleteCategory(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return errNotFound
	}
	delete(s.categories, id)
	return nil
}

// --- видео ---

// SaveVideo сохраняет видео.
func (s *Storage) SaveVideo(video models.Video) *models.Video {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	video.ID = uuid.NewString()
	video.CreatedAt = now
	video.UpdatedAt = now
	s.videos[video.ID] = &video
	copied := video
	return &copied
}

// Video возвращает видео по идентификатору.
func (s *Storage) Video(id string) (*models.Video, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.videos[id]
	if !ok {
		return nil, errNotFound
	}
	copied := *v
	return &copied, nil
}

// Videos возвращает все видео.
func (s *Storage) Videos() []models.Video {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Video, 0, len(s.videos))
	for _, v := range s.videos {
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// UpdateVideo обновляет метаданные видео.
func (s *Storage) UpdateVideo(id string, update models.Video) (*models.Video, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	if !ok {
		return nil, errNotFound
	}
	v.Title = update.Title
	v.Description = update.Description
	v.CategoryID = update.CategoryID
	v.Duration = update.Duration
	v.IsPublished = update.IsPublished
	v.UpdatedAt = time.Now().UTC()
	copied := *v
	return &copied, nil
}

// DeleteVideo удаляет видео.
func (s *Storage) DeleteVideo(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.videos[id]; !ok {
		return errNotFound
	}
	delete(s.videos, id)
	return nil
}

// Catalog возвращает опубликованные видео с аннотациями доступа для
// пользователя. Аннотации вычисляются на каждый запрос и не кешируются:
// они зависят от текущей записи пользователя.
func (s *Storage) Catalog(userID string) []models.Video {
	s.mu.Lock()
	defer s.mu.Unlock()

	hasAccess := s.hasAccessLocked(userID)
	activePlans := make([]models.PlanRef, 0, len(s.plans))
	for _, p := range s.plans {
		if p.IsActive {
			activePlans = append(activePlans, models.PlanRef{ID: p.ID, Name: p.Name})
		}
	}
	sort.Slice(activePlans, func(i, j int) bool { return activePlans[i].Name < activePlans[j].Name })

	out := make([]models.Video, 0, len(s.videos))
	for _, v := range s.videos {
		if !v.IsPublished {
			continue
		}
		video := *v
		video.HasAccess = hasAccess
		video.IsLocked = !hasAccess
		if !hasAccess {
			// ссылка на файл не отдается для закрытых видео
			video.VideoURL = ""
			video.RequiredPlans = activePlans
		}
		out = append(out, video)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// IncrementViews увеличивает счетчик просмотров.
func (s *Storage) IncrementViews(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.videos[id]; ok {
		v.ViewCount++
	}
}
