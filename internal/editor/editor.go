// Package editor holds the state of the console's editing surfaces: the
// register form, the rate-limit and virtual-domain editors and the detail view.
//
// All surfaces share one current service. Opening a surface selects its
// service; closing any surface clears the selection.
package editor

import (
	"sync"

	"github.com/stacklok/registry-console/internal/registry"
)

// Surface identifies an editing surface
type Surface string

// Editing surfaces
const (
	SurfaceRegister      Surface = "register"
	SurfaceRateLimit     Surface = "rate-limit"
	SurfaceVirtualDomain Surface = "virtual-domain"
	SurfaceDetail        Surface = "detail"
)

// State is a snapshot of every surface for rendering
type State struct {
	Open          map[Surface]bool
	Current       *registry.ServiceInstance
	RegisterForm  RegisterForm
	RateLimit     registry.RateLimitConfig
	VirtualDomain string
}

// Editor is safe for concurrent use
type Editor struct {
	mu            sync.Mutex
	open          map[Surface]bool
	current       *registry.ServiceInstance
	registerForm  RegisterForm
	rateLimit     registry.RateLimitConfig
	virtualDomain string
}

// New creates an editor with every surface closed
func New() *Editor {
	return &Editor{open: make(map[Surface]bool)}
}

// State returns a snapshot of all surfaces
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	open := make(map[Surface]bool, len(e.open))
	for k, v := range e.open {
		open[k] = v
	}
	var current *registry.ServiceInstance
	if e.current != nil {
		c := *e.current
		current = &c
	}
	return State{
		Open:          open,
		Current:       current,
		RegisterForm:  e.registerForm,
		RateLimit:     e.rateLimit,
		VirtualDomain: e.virtualDomain,
	}
}

// IsOpen reports whether s is open
func (e *Editor) IsOpen(s Surface) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open[s]
}

// Current returns the selected service
func (e *Editor) Current() (registry.ServiceInstance, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return registry.ServiceInstance{}, false
	}
	return *e.current, true
}

// OpenRegister opens the register form, keeping any previous input
func (e *Editor) OpenRegister() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open[SurfaceRegister] = true
}

// SetRegisterForm replaces the register form input
func (e *Editor) SetRegisterForm(f RegisterForm) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.registerForm = f
}

// RegisterForm returns the register form input
func (e *Editor) RegisterForm() RegisterForm {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registerForm
}

// CloseRegister closes the register form without clearing it
func (e *Editor) CloseRegister() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open[SurfaceRegister] = false
}

// ResetRegister clears the register form and closes it
func (e *Editor) ResetRegister() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.registerForm = RegisterForm{}
	e.open[SurfaceRegister] = false
}

// OpenRateLimit selects inst and seeds the draft from its current settings
func (e *Editor) OpenRateLimit(inst registry.ServiceInstance) {
	msg := inst.RateLimitErrorMessage
	if msg == "" {
		msg = registry.DefaultRateLimitErrorMessage
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = &inst
	e.rateLimit = registry.RateLimitConfig{
		Enabled:              inst.RateLimitEnabled,
		MaxRequestsPerSecond: inst.MaxRequestsPerSecond,
		ErrorMessage:         msg,
	}
	e.open[SurfaceRateLimit] = true
}

// SetRateLimitDraft replaces the rate-limit draft
func (e *Editor) SetRateLimitDraft(cfg registry.RateLimitConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rateLimit = cfg
}

// RateLimitTarget returns the selected service and draft when the rate-limit
// editor is open with a selection
func (e *Editor) RateLimitTarget() (registry.ServiceInstance, registry.RateLimitConfig, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open[SurfaceRateLimit] || e.current == nil {
		return registry.ServiceInstance{}, registry.RateLimitConfig{}, false
	}
	return *e.current, e.rateLimit, true
}

// CloseRateLimit closes the rate-limit editor and clears the selection
func (e *Editor) CloseRateLimit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open[SurfaceRateLimit] = false
	e.current = nil
}

// OpenVirtualDomain selects inst and seeds the draft with its domain
func (e *Editor) OpenVirtualDomain(inst registry.ServiceInstance) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = &inst
	e.virtualDomain = inst.Domain()
	e.open[SurfaceVirtualDomain] = true
}

// SetVirtualDomainDraft replaces the draft domain; "" removes the domain
func (e *Editor) SetVirtualDomainDraft(domain string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.virtualDomain = domain
}

// VirtualDomainTarget returns the selected service and draft domain. ok is
// false when no service with an ID is selected.
func (e *Editor) VirtualDomainTarget() (inst registry.ServiceInstance, domain string, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil || e.current.ID == 0 {
		return registry.ServiceInstance{}, "", false
	}
	return *e.current, e.virtualDomain, true
}

// CloseVirtualDomain closes the virtual-domain editor, clearing the selection
// and the draft
func (e *Editor) CloseVirtualDomain() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open[SurfaceVirtualDomain] = false
	e.current = nil
	e.virtualDomain = ""
}

// OpenDetail selects inst and opens the detail view
func (e *Editor) OpenDetail(inst registry.ServiceInstance) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = &inst
	e.open[SurfaceDetail] = true
}

// CloseDetail closes the detail view and clears the selection
func (e *Editor) CloseDetail() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.open[SurfaceDetail] = false
	e.current = nil
}
