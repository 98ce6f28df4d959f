// Package guard реализует защиту маршрутов по ролям: чистую функцию,
// отображающую текущую сессию и целевой маршрут в решение
// "отрисовать / перенаправить". Решение никогда не является ошибкой:
// отсутствие сессии — обычная ветка, а не исключение.
package guard

import (
	"slices"
	"strings"

	"github.com/magabrotheeeer/video-subscription-client/internal/models"
)

// Action вид решения охранника маршрутов.
type Action int

const (
	// Render — маршрут разрешён к отрисовке
	Render Action = iota
	// Redirect — пользователя нужно перенаправить на Decision.Target
	Redirect
)

// Decision решение охранника для конкретной навигации.
type Decision struct {
	Action Action
	Target string // целевой маршрут при Redirect
}

// Session описывает часть хранилища сессии, нужную охраннику.
type Session interface {
	IsAuthenticated() bool
	User() *models.User
}

// Route защищённый маршрут с набором допустимых ролей.
// Пустой набор означает "любой аутентифицированный пользователь".
type Route struct {
	Prefix       string
	AllowedRoles []models.Role
}

// Guard хранит таблицу маршрутов и служебные адреса перенаправлений.
type Guard struct {
	routes           []Route
	publicPaths      []string
	loginPath        string
	unauthorizedPath string
	adminHome        string
	studentHome      string
}

// New создает охранника с таблицей маршрутов платформы:
// /admin/** только для администраторов, /student/** только для студентов.
func New() *Guard {
	return &Guard{
		routes: []Route{
			{Prefix: "/admin", AllowedRoles: []models.Role{models.RoleAdmin}},
			{Prefix: "/student", AllowedRoles: []models.Role{models.RoleStudent}},
		},
		publicPaths:      []string{"/login", "/register", "/unauthorized"},
		loginPath:        "/login",
		unauthorizedPath: "/unauthorized",
		adminHome:        "/admin/dashboard",
		studentHome:      "/student/videos",
	}
}

// Decide возвращает решение для навигации на path при текущей сессии.
//
// Корень ("/") не отрисовывается никогда: аутентифицированный пользователь
// уходит на домашний маршрут своей роли, остальные — на вход. Неизвестные
// пути перенаправляются на корень и разрешаются заново тем же правилом.
func (g *Guard) Decide(sess Session, path string) Decision {
	if slices.Contains(g.publicPaths, path) {
		return Decision{Action: Render}
	}

	if path == "/" {
		return g.resolveRoot(sess)
	}

	route, matched := g.match(path)
	if !matched {
		return Decision{Action: Redirect, Target: "/"}
	}

	if !sess.IsAuthenticated() {
		return Decision{Action: Redirect, Target: g.loginPath}
	}

	user := sess.User()
	if user == nil {
		// недостижимо при атомарной сессии, но охранник не должен паниковать
		return Decision{Action: Redirect, Target: g.loginPath}
	}

	if len(route.AllowedRoles) > 0 && !slices.Contains(route.AllowedRoles, user.Role) {
		return Decision{Action: Redirect, Target: g.unauthorizedPath}
	}

	// индексные пути секций ведут на домашний маршрут секции
	if path == "/admin" {
		return Decision{Action: Redirect, Target: g.adminHome}
	}
	if path == "/student" {
		return Decision{Action: Redirect, Target: g.studentHome}
	}

	return Decision{Action: Render}
}

func (g *Guard) resolveRoot(sess Session) Decision {
	if !sess.IsAuthenticated() {
		return Decision{Action: Redirect, Target: g.loginPath}
	}
	if user := sess.User(); user != nil && user.Role == models.RoleAdmin {
		return Decision{Action: Redirect, Target: g.adminHome}
	}
	return Decision{Action: Redirect, Target: g.studentHome}
}

func (g *Guard) match(path string) (Route, bool) {
	for _, route := range g.routes {
		if path == route.Prefix || strings.HasPrefix(path, route.Prefix+"/") {
			return route, true
		}
	}
	return Route{}, false
}
