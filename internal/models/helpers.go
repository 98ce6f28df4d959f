package models

// Производные признаки вынесены в чистые функции, чтобы каждый потребитель
// (каталог, плеер, страница подписки) использовал одно и то же определение,
// а не пересчитывал булевы флаги на месте.

// IsResolved сообщает, находится ли запись в разрешённом терминальном
// состоянии, из которого студент может подать новую заявку.
func (e *Enrollment) IsResolved() bool {
	if e == nil {
		return true
	}
	return e.Status == StatusInactive || e.Status == StatusExpired
}

// IsPending сообщает, ожидает ли запись решения администратора.
func (e *Enrollment) IsPending() bool {
	return e != nil && e.Status == StatusPendingPayment
}

// CanSubmit сообщает, может ли студент отправить новую заявку:
// записи нет вовсе, либо предыдущая разрешена (отклонена или истекла).
// Пока заявка в статусе pending_payment, повторная подача запрещена.
func (e *Enrollment) CanSubmit() bool {
	return e == nil || e.IsResolved()
}

// IsCurrentPlan сообщает, является ли план действующим планом записи.
func (e *Enrollment) IsCurrentPlan(planID string) bool {
	return e != nil && e.Status == StatusActive && e.SubscriptionPlanID == planID
}

// UpgradeDifference возвращает разницу в цене между действующим планом записи
// и целевым планом, если переход является повышением.
//
// Значение справочное, для отображения пользователю: клиент никогда не
// отправляет сумму на бэкенд, итоговая сумма платежа остается за бэкендом.
func UpgradeDifference(e *Enrollment, target *SubscriptionPlan) (float64, bool) {
	if e == nil || target == nil || e.Status != StatusActive || e.SubscriptionPlan == nil {
		return 0, false
	}
	if target.Price <= e.SubscriptionPlan.Price {
		return 0, false
	}
	return target.Price - e.SubscriptionPlan.Price, true
}

// Locked сообщает, закрыто ли видео для текущего пользователя.
// Инвариант каталога: IsLocked == !HasAccess.
func (v *Video) Locked() bool {
	return !v.HasAccess
}

// NormalizeAccess приводит аннотации доступа к инварианту IsLocked == !HasAccess.
// Бэкенд присылает оба поля, но клиент не доверяет их согласованности слепо.
func (v *Video) NormalizeAccess() {
	v.IsLocked = !v.HasAccess
}
