package store

import "github.com/fragsync-dev/fragsync/pkg/state"

// NavigationUpdate is a partial navigation change. Nil fields are left
// untouched; path, active module, and breadcrumbs are independently
// settable.
type NavigationUpdate struct {
	Path         *string
	ActiveModule *string
	Breadcrumbs  []state.Breadcrumb
}

// SetNavigation shallow-merges update into the navigation state.
func (s *Store) SetNavigation(update NavigationUpdate) {
	s.mutate("navigation.set", func(st *state.Snapshot) {
		if update.Path != nil {
			st.Navigation.Path = *update.Path
		}
		if update.ActiveModule != nil {
			st.Navigation.ActiveModule = *update.ActiveModule
		}
		if update.Breadcrumbs != nil {
			crumbs := make([]state.Breadcrumb, len(update.Breadcrumbs))
			copy(crumbs, update.Breadcrumbs)
			st.Navigation.Breadcrumbs = crumbs
		}
	})
}

// SetPath sets the current path only.
func (s *Store) SetPath(path string) {
	s.SetNavigation(NavigationUpdate{Path: &path})
}

// SetActiveModule sets the active module only.
func (s *Store) SetActiveModule(module string) {
	s.SetNavigation(NavigationUpdate{ActiveModule: &module})
}

// SetBreadcrumbs replaces the breadcrumb trail only.
func (s *Store) SetBreadcrumbs(crumbs []state.Breadcrumb) {
	s.SetNavigation(NavigationUpdate{Breadcrumbs: crumbs})
}

// ReplaceNavigation replaces the navigation state wholesale. The
// synchronization service uses this to apply a broadcast snapshot.
func (s *Store) ReplaceNavigation(nav state.Navigation) {
	s.mutate("navigation.replace", func(st *state.Snapshot) {
		st.Navigation = nav.Clone()
	})
}

// Navigation returns the current navigation state by value.
func (s *Store) Navigation() state.Navigation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Navigation.Clone()
}
