package domain

import (
	"fmt"
	"strings"
)

// Branch название филиала ресторана
type Branch string

// BranchInfo настроенный филиал
type BranchInfo struct {
	Name       Branch
	ManagerIDs []int64 // Пользователи, которым доступен список бронирований филиала
}

// BranchCatalog закрытый список филиалов, принимающих бронирования.
// Новый филиал добавляется через конфиг.
type BranchCatalog struct {
	branches []BranchInfo
	index    map[Branch]int
}

// NewBranchCatalog создает каталог, пустые и повторяющиеся названия отклоняются
func NewBranchCatalog(branches []BranchInfo) (*BranchCatalog, error) {
	c := &BranchCatalog{
		branches: make([]BranchInfo, 0, len(branches)),
		index:    make(map[Branch]int, len(branches)),
	}

	for _, b := range branches {
		name := Branch(strings.TrimSpace(string(b.Name)))
		if name == "" {
			return nil, fmt.Errorf("%w: empty branch name", ErrUnknownBranch)
		}
		if _, exists := c.index[name]; exists {
			return nil, fmt.Errorf("%w: duplicated branch %q", ErrUnknownBranch, name)
		}

		c.index[name] = len(c.branches)
		c.branches = append(c.branches, BranchInfo{Name: name, ManagerIDs: b.ManagerIDs})
	}

	return c, nil
}

// DefaultBranchCatalog два исходных филиала без менеджеров
func DefaultBranchCatalog() *BranchCatalog {
	c, _ := NewBranchCatalog([]BranchInfo{
		{Name: BranchHoManTin},
		{Name: BranchMongKok},
	})
	return c
}

// Parse возвращает филиал по названию
func (c *BranchCatalog) Parse(name string) (Branch, error) {
	branch := Branch(strings.TrimSpace(name))
	if _, ok := c.index[branch]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownBranch, name)
	}
	return branch, nil
}

// Names возвращает названия филиалов в порядке конфига
func (c *BranchCatalog) Names() []Branch {
	names := make([]Branch, len(c.branches))
	for i, b := range c.branches {
		names[i] = b.Name
	}
	return names
}

// IsManager проверяет, управляет ли пользователь филиалом
func (c *BranchCatalog) IsManager(branch Branch, userID int64) bool {
	i, ok := c.index[branch]
	if !ok {
		return false
	}
	for _, id := range c.branches[i].ManagerIDs {
		if id == userID {
			return true
		}
	}
	return false
}
