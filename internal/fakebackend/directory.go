// ABOUTME: In-memory account and linked-user records for one principal kind
// ABOUTME: Not safe for concurrent use on its own; the Server serializes access

package fakebackend

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/2389/principal-session/internal/principal"
)

// Directory errors
var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicate     = errors.New("already registered")
	ErrInvalidStatus = errors.New("invalid status transition")
)

// account is a registered gym or organization.
type account struct {
	ID              int64
	Name            string
	CNPJ            string
	Email           string
	Phone           string
	Address         string
	ResponsibleName string
	IsActive        bool
	PasswordHash    []byte
}

// member is a user linked to an account.
type member struct {
	ID       string
	FullName string
	Email    string
	Status   string
	LinkedAt time.Time
}

// directory holds the accounts of one kind and their linked users.
type directory struct {
	kind     principal.Kind
	nextID   int64
	nextUser int64
	accounts map[int64]*account
	byEmail  map[string]int64
	byCNPJ   map[string]int64
	members  map[int64][]*member // account ID -> linked users, in link order
}

func newDirectory(kind principal.Kind) *directory {
	return &directory{
		kind:     kind,
		accounts: make(map[int64]*account),
		byEmail:  make(map[string]int64),
		byCNPJ:   make(map[string]int64),
		members:  make(map[int64][]*member),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// add stores a new account and assigns its ID.
func (d *directory) add(a *account) (*account, error) {
	email := normalizeEmail(a.Email)
	if _, ok := d.byEmail[email]; ok {
		return nil, ErrDuplicate
	}
	if a.CNPJ != "" {
		if _, ok := d.byCNPJ[a.CNPJ]; ok {
			return nil, ErrDuplicate
		}
	}

	d.nextID++
	a.ID = d.nextID
	a.Email = email
	a.IsActive = true
	d.accounts[a.ID] = a
	d.byEmail[email] = a.ID
	if a.CNPJ != "" {
		d.byCNPJ[a.CNPJ] = a.ID
	}
	return a, nil
}

func (d *directory) get(id int64) (*account, error) {
	a, ok := d.accounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return a, nil
}

func (d *directory) byLogin(email string) (*account, error) {
	id, ok := d.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return d.accounts[id], nil
}

// link attaches a user to an account. Gym users get UUIDs, organization
// users get sequential numeric IDs.
func (d *directory) link(accountID int64, fullName, email, status string) (*member, error) {
	if _, err := d.get(accountID); err != nil {
		return nil, err
	}

	m := &member{FullName: fullName, Email: email, Status: status, LinkedAt: time.Now().UTC()}
	if d.kind.Name == principal.GymKind.Name {
		m.ID = uuid.New().String()
	} else {
		d.nextUser++
		m.ID = strconv.FormatInt(d.nextUser, 10)
	}
	d.members[accountID] = append(d.members[accountID], m)
	return m, nil
}

// users returns the account's linked users, optionally only those with status.
func (d *directory) users(accountID int64, status string) []*member {
	var out []*member
	for _, m := range d.members[accountID] {
		if status == "" || m.Status == status {
			out = append(out, m)
		}
	}
	return out
}

func (d *directory) member(accountID int64, userID string) (*member, int, error) {
	for i, m := range d.members[accountID] {
		if m.ID == userID {
			return m, i, nil
		}
	}
	return nil, -1, ErrNotFound
}

// toggle flips an active user to inactive and back. Pending users must be
// approved first.
func (d *directory) toggle(accountID int64, userID string) (*member, error) {
	m, _, err := d.member(accountID, userID)
	if err != nil {
		return nil, err
	}
	switch m.Status {
	case principal.UserStatusActive:
		m.Status = principal.UserStatusInactive
	case principal.UserStatusInactive:
		m.Status = principal.UserStatusActive
	default:
		return nil, ErrInvalidStatus
	}
	return m, nil
}

// approve moves a pending user to active.
func (d *directory) approve(accountID int64, userID string) (*member, error) {
	m, _, err := d.member(accountID, userID)
	if err != nil {
		return nil, err
	}
	if m.Status != principal.UserStatusPending {
		return nil, ErrInvalidStatus
	}
	m.Status = principal.UserStatusActive
	return m, nil
}

// remove unlinks a user. With pendingOnly set, only pending users qualify.
func (d *directory) remove(accountID int64, userID string, pendingOnly bool) error {
	m, i, err := d.member(accountID, userID)
	if err != nil {
		return err
	}
	if pendingOnly && m.Status != principal.UserStatusPending {
		return ErrInvalidStatus
	}
	list := d.members[accountID]
	d.members[accountID] = append(list[:i:i], list[i+1:]...)
	return nil
}

// stats counts the account's linked users by status.
func (d *directory) stats(accountID int64) principal.OrganizationStats {
	var s principal.OrganizationStats
	for _, m := range d.members[accountID] {
		s.TotalUsers++
		switch m.Status {
		case principal.UserStatusActive:
			s.ActiveUsers++
		case principal.UserStatusInactive:
			s.InactiveUsers++
		case principal.UserStatusPending:
			s.PendingUsers++
		}
	}
	return s
}
