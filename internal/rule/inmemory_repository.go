package rule

import (
	"errors"
	"sort"
	"sync"
)

// InMemoryRepository is an implementation of the rule repository backed by a
// plain map, used for tests and standalone runs without a database
type InMemoryRepository struct {
	mutex  sync.RWMutex
	rules  map[int64]Rule
	nextID int64
}

// NewInMemoryRepository returns a new instance of InMemoryRepository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		rules:  make(map[int64]Rule),
		nextID: 1,
	}
}

// CheckByName returns if a rule exists with the input name
func (r *InMemoryRepository) CheckByName(name string) (bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	for _, rule := range r.rules {
		if rule.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// Create creates a new Rule in the repository
func (r *InMemoryRepository) Create(rule Rule) (int64, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	rule.ID = r.nextID
	r.nextID++
	r.rules[rule.ID] = rule
	return rule.ID, nil
}

// Get search and returns a rule from the repository by its id
func (r *InMemoryRepository) Get(id int64) (Rule, bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	rule, ok := r.rules[id]
	return rule, ok, nil
}

// GetByName search and returns a rule from the repository by its name
func (r *InMemoryRepository) GetByName(name string) (Rule, bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	for _, rule := range r.rules {
		if rule.Name == name {
			return rule, true, nil
		}
	}
	return Rule{}, false, nil
}

// Update updates a rule in the repository, preserving its activation state
func (r *InMemoryRepository) Update(rule Rule) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	existing, ok := r.rules[rule.ID]
	if !ok {
		return errors.New("rule not found")
	}
	rule.IsActive = existing.IsActive
	r.rules[rule.ID] = rule
	return nil
}

// SetActive toggles the activation state of a rule
func (r *InMemoryRepository) SetActive(id int64, active bool) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	rule, ok := r.rules[id]
	if !ok {
		return errors.New("rule not found")
	}
	rule.IsActive = active
	r.rules[id] = rule
	return nil
}

// Delete deletes a rule from the repository by its id
func (r *InMemoryRepository) Delete(id int64) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if _, ok := r.rules[id]; !ok {
		return errors.New("rule not found")
	}
	delete(r.rules, id)
	return nil
}

// GetAll returns all rules in the repository
func (r *InMemoryRepository) GetAll() (map[int64]Rule, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	rules := make(map[int64]Rule, len(r.rules))
	for id, rule := range r.rules {
		rules[id] = rule
	}
	return rules, nil
}

// GetAllActive returns all active rules in the repository
func (r *InMemoryRepository) GetAllActive() (map[int64]Rule, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	rules := make(map[int64]Rule)
	for id, rule := range r.rules {
		if rule.IsActive {
			rules[id] = rule
		}
	}
	return rules, nil
}

// GetMatching returns all active rules matching the input event type,
// ordered by rule id for deterministic processing
func (r *InMemoryRepository) GetMatching(eventType string) ([]Rule, error) {
	actives, err := r.GetAllActive()
	if err != nil {
		return nil, err
	}
	matching := make([]Rule, 0)
	for _, rule := range actives {
		if rule.Matches(eventType) {
			matching = append(matching, rule)
		}
	}
	sort.Slice(matching, func(i, j int) bool { return matching[i].ID < matching[j].ID })
	return matching, nil
}

// CountByState returns the number of active rules and the total number of rules
func (r *InMemoryRepository) CountByState() (int64, int64, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	var active int64
	for _, rule := range r.rules {
		if rule.IsActive {
			active++
		}
	}
	return active, int64(len(r.rules)), nil
}
