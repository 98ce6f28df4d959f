// Package models содержит доменные структуры видеоплатформы: пользователей,
// планы подписки, записи на план (enrollment), категории и видео каталога.
// Структуры используются клиентским ядром и dev-бэкендом; имена JSON-полей
// совпадают с контрактом REST API платформы.
package models

import "time"

// Role роль пользователя платформы.
type Role string

const (
	// RoleAdmin — администратор платформы
	RoleAdmin Role = "admin"
	// RoleStudent — студент, потребитель каталога
	RoleStudent Role = "student"
)

// EnrollmentStatus статус записи студента на план подписки.
type EnrollmentStatus string

const (
	// StatusPendingPayment — ваучер отправлен, ожидает решения администратора
	StatusPendingPayment EnrollmentStatus = "pending_payment"
	// StatusActive — подписка одобрена и действует
	StatusActive EnrollmentStatus = "active"
	// StatusInactive — заявка отклонена администратором
	StatusInactive EnrollmentStatus = "inactive"
	// StatusExpired — срок подписки истёк (определяется бэкендом)
	StatusExpired EnrollmentStatus = "expired"
)

// PaymentStatus статус оплаты по записи.
type PaymentStatus string

const (
	// PaymentPending — оплата не подтверждена
	PaymentPending PaymentStatus = "pending"
	// PaymentCompleted — оплата подтверждена
	PaymentCompleted PaymentStatus = "completed"
	// PaymentFailed — оплата отклонена
	PaymentFailed PaymentStatus = "failed"
	// PaymentRefunded — оплата возвращена
	PaymentRefunded PaymentStatus = "refunded"
)

// User представляет зарегистрированного пользователя платформы.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// SubscriptionPlan план подписки, управляется администраторами,
// студентам доступен только для чтения.
type SubscriptionPlan struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Price          float64    `json:"price"`
	DurationMonths int        `json:"durationMonths"`
	IsActive       bool       `json:"isActive"`
	Features       []string   `json:"features"`
	Videos         []VideoRef `json:"videos,omitempty"`
	CreatedAt      time.Time  `json:"createdAt,omitzero"`
	UpdatedAt      time.Time  `json:"updatedAt,omitzero"`
}

// VideoRef краткая ссылка на видео внутри плана.
type VideoRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Enrollment запись студента на план подписки с жизненным циклом одобрения.
//
// Статус переводится только администратором: pending_payment -> active при
// одобрении, pending_payment -> inactive при отклонении. Статус expired
// выставляет бэкенд по времени, клиент его не вычисляет.
type Enrollment struct {
	ID                 string            `json:"id"`
	UserID             string            `json:"userId"`
	SubscriptionPlanID string            `json:"subscriptionPlanId,omitempty"`
	Status             EnrollmentStatus  `json:"status"`
	PaymentStatus      PaymentStatus     `json:"paymentStatus"`
	AmountPaid         float64           `json:"amountPaid"`
	PaymentVoucherURL  string            `json:"paymentVoucherUrl,omitempty"`
	EnrolledAt         time.Time         `json:"enrolledAt,omitzero"`
	ExpiresAt          *time.Time        `json:"expiresAt,omitempty"`
	User               *User             `json:"user,omitempty"`
	SubscriptionPlan   *SubscriptionPlan `json:"subscriptionPlan,omitempty"`
	CreatedAt          time.Time         `json:"createdAt,omitzero"`
	UpdatedAt          time.Time         `json:"updatedAt,omitzero"`
}

// Category категория видео.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

// PlanRef ссылка на план, открывающий доступ к видео.
type PlanRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Video проекция видео для каталога. Поля доступа (HasAccess, IsLocked,
// RequiredPlans) вычисляются бэкендом для конкретного пользователя и не
// должны кешироваться между сессиями разных пользователей.
type Video struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	VideoURL     string    `json:"videoUrl,omitempty"` // отсутствует у заблокированных видео
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	Duration     int       `json:"duration"`
	IsPublished  bool      `json:"isPublished"`
	ViewCount    int       `json:"viewCount"`
	CategoryID   string    `json:"categoryId,omitempty"`
	Category     *Category `json:"category,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
	UpdatedAt    time.Time `json:"updatedAt,omitzero"`

	// Поля контроля доступа
	HasAccess     bool      `json:"hasAccess"`
	IsLocked      bool      `json:"isLocked"`
	RequiredPlans []PlanRef `json:"requiredPlans,omitempty"`
}
