// Package routeguard modela la navegación del cliente como una máquina de
// estados explícita: el estado de sesión se inyecta y se evalúa en cada
// navegación, en lugar de consultarse como singleton ambiente.
package routeguard

import (
	"sync"

	"convo-chat/internal/domain"
)

// State es el estado de autenticación visto por el cliente.
type State int

const (
	// StateLoading es el pseudoestado inicial hasta resolver la identidad.
	StateLoading State = iota
	StateUnauthenticated
	StateAuthenticatedIncomplete
	StateAuthenticatedComplete
)

// Route identifica las superficies navegables del cliente.
type Route string

const (
	RouteAuth    Route = "/auth"
	RouteChat    Route = "/chat"
	RouteProfile Route = "/profile"
)

// Decision es el resultado de evaluar un guard: permitir la ruta, esperar
// (identidad aún cargando) o redirigir.
type Decision struct {
	Allow      bool
	Wait       bool
	RedirectTo Route
}

// Session es el accessor de sesión del cliente. Se puebla al arrancar la
// aplicación y se limpia en logout.
type Session struct {
	mu    sync.RWMutex
	state State
}

// NewSession arranca en StateLoading hasta que Establish o Clear resuelvan.
func NewSession() *Session {
	return &Session{state: StateLoading}
}

// Establish fija el estado a partir de la cuenta autenticada.
func (s *Session) Establish(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ProfileSetup {
		s.state = StateAuthenticatedComplete
	} else {
		s.state = StateAuthenticatedIncomplete
	}
}

// Clear vuelve a no autenticado; se invoca en logout o al fallar user-info.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateUnauthenticated
}

// State devuelve el estado actual.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Resolve evalúa el guard de navegación para la ruta destino. Se llama en
// cada navegación, no una sola vez.
func (s *Session) Resolve(target Route) Decision {
	return Resolve(s.State(), target)
}

// Resolve decide si un viewer en el estado dado puede entrar a la ruta.
func Resolve(state State, target Route) Decision {
	if state == StateLoading {
		return Decision{Wait: true}
	}

	authenticated := state == StateAuthenticatedIncomplete || state == StateAuthenticatedComplete

	switch target {
	case RouteAuth:
		if authenticated {
			return Decision{RedirectTo: RouteChat}
		}
		return Decision{Allow: true}
	case RouteChat:
		if !authenticated {
			return Decision{RedirectTo: RouteAuth}
		}
		if state == StateAuthenticatedIncomplete {
			return Decision{RedirectTo: RouteProfile}
		}
		return Decision{Allow: true}
	case RouteProfile:
		if !authenticated {
			return Decision{RedirectTo: RouteAuth}
		}
		return Decision{Allow: true}
	default:
		// Rutas desconocidas caen a la superficie de autenticación.
		return Decision{RedirectTo: RouteAuth}
	}
}
