package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/GriffinCanCode/retrodesk/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/retrodesk/internal/shared/types"
	"github.com/GriffinCanCode/retrodesk/internal/shared/utils"
)

// Manager holds the application definitions windows can be opened for
type Manager struct {
	mu      sync.RWMutex
	apps    map[string]types.AppDefinition // Protected by mu
	metrics *monitoring.Metrics
}

// NewManager creates an empty registry
func NewManager() *Manager {
	return &Manager{apps: make(map[string]types.AppDefinition)}
}

// NewDefault creates a registry holding the built-in applications
func NewDefault() *Manager {
	m := NewManager()
	for _, app := range Builtins() {
		// Built-ins are valid by construction
		_ = m.Register(app)
	}
	return m
}

// WithMetrics adds metrics tracking to the registry
func (m *Manager) WithMetrics(metrics *monitoring.Metrics) *Manager {
	m.mu.Lock()
	m.metrics = metrics
	count := len(m.apps)
	m.mu.Unlock()

	metrics.SetRegistryApps(count)
	return m
}

// Register adds or replaces a definition
func (m *Manager) Register(app types.AppDefinition) error {
	if err := Validate(app); err != nil {
		return err
	}

	m.mu.Lock()
	m.apps[app.ID] = clone(app)
	count := len(m.apps)
	m.mu.Unlock()

	m.metrics.SetRegistryApps(count)
	return nil
}

// Get retrieves a definition by id
func (m *Manager) Get(id string) (types.AppDefinition, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	app, ok := m.apps[id]
	if !ok {
		return types.AppDefinition{}, false
	}
	// Return a copy to prevent external modifications
	return clone(app), true
}

// List returns every definition ordered by id
func (m *Manager) List() []types.AppDefinition {
	m.mu.RLock()
	defer m.mu.RUnlock()

	apps := make([]types.AppDefinition, 0, len(m.apps))
	for _, app := range m.apps {
		apps = append(apps, clone(app))
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].ID < apps[j].ID })
	return apps
}

// Delete removes a definition
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	_, ok := m.apps[id]
	delete(m.apps, id)
	count := len(m.apps)
	m.mu.Unlock()

	if ok {
		m.metrics.SetRegistryApps(count)
	}
	return ok
}

// Len returns the number of registered applications
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.apps)
}

// Validate checks a definition before it is registered
func Validate(app types.AppDefinition) error {
	if err := utils.ValidateID(app.ID, "id", true); err != nil {
		return err
	}
	if err := utils.ValidateString(app.Name, "name", 1, utils.MaxTitleLength, true); err != nil {
		return fmt.Errorf("app %s: %w", app.ID, err)
	}

	dw := app.DefaultWindow
	if dw == nil {
		return nil
	}
	if dw.WidthRatio < 0 || dw.WidthRatio > 1 || dw.HeightRatio < 0 || dw.HeightRatio > 1 {
		return fmt.Errorf("app %s: size ratios must be within [0, 1]", app.ID)
	}
	if err := utils.ValidateOpacity(dw.Opacity); err != nil {
		return fmt.Errorf("app %s: %w", app.ID, err)
	}
	if dw.BackdropBlurPx != nil && *dw.BackdropBlurPx < 0 {
		return fmt.Errorf("app %s: backdrop blur must not be negative", app.ID)
	}
	if dw.Theme != nil {
		if err := utils.ValidateString(*dw.Theme, "theme", 0, utils.MaxThemeLength, false); err != nil {
			return fmt.Errorf("app %s: %w", app.ID, err)
		}
	}
	return nil
}

func clone(app types.AppDefinition) types.AppDefinition {
	if app.DefaultWindow == nil {
		return app
	}
	dw := *app.DefaultWindow
	if dw.Opacity != nil {
		v := *dw.Opacity
		dw.Opacity = &v
	}
	if dw.BackdropBlurPx != nil {
		v := *dw.BackdropBlurPx
		dw.BackdropBlurPx = &v
	}
	if dw.Theme != nil {
		v := *dw.Theme
		dw.Theme = &v
	}
	app.DefaultWindow = &dw
	return app
}
