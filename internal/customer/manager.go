// Package customer tracks the inline customer sub-form of a document form.
//
// The manager never writes into a form directly. Every operation returns a
// Patch that the caller applies to its own document state.
package customer

import (
	"strings"

	"github.com/rezonia/invoice-submit/internal/model"
)

// Patch is the change a customer operation makes to the document
type Patch struct {
	CustomerID *string
	Customer   model.CustomerData
}

// Apply writes the patch into doc
func (p Patch) Apply(doc *model.Document) {
	if doc == nil {
		return
	}
	if p.CustomerID != nil {
		doc.CustomerID = model.String(*p.CustomerID)
	} else {
		doc.CustomerID = nil
	}
	c := p.Customer
	doc.Customer = c.Clone()
}

// State is the side-channel customer state consumed at submission time
type State struct {
	ShowForm bool                `json:"show_form"`
	Original *model.CustomerData `json:"original,omitempty"`
}

// Manager holds the customer selection state of one form instance
type Manager struct {
	original        *model.CustomerData
	showForm        bool
	shouldFocusName bool
	selectedID      *string
}

// NewManager creates a manager seeded from an existing or duplicated
// document. A seeded customer_id marks the inline customer as the original
// snapshot of that existing customer.
func NewManager(customerID *string, customer *model.CustomerData) *Manager {
	m := &Manager{}
	if customerID != nil && *customerID != "" {
		snapshot := customer.Normalized()
		m.selectedID = model.String(*customerID)
		m.original = &snapshot
		m.showForm = true
		return m
	}
	if customer.HasAny() {
		m.showForm = true
	}
	return m
}

// OriginalCustomer returns the snapshot of the last selected existing customer
func (m *Manager) OriginalCustomer() *model.CustomerData {
	return m.original.Clone()
}

// ShowCustomerForm reports whether a customer has been chosen
func (m *Manager) ShowCustomerForm() bool {
	return m.showForm
}

// ShouldFocusName is true right after a new customer with an empty name was chosen
func (m *Manager) ShouldFocusName() bool {
	return m.shouldFocusName
}

// SelectedCustomerID returns the bound existing customer id, or nil
func (m *Manager) SelectedCustomerID() *string {
	if m.selectedID == nil {
		return nil
	}
	return model.String(*m.selectedID)
}

// State returns the snapshot the normalizer needs
func (m *Manager) State() State {
	return State{ShowForm: m.showForm, Original: m.OriginalCustomer()}
}

// HandleCustomerSelect binds a customer. An empty id means a new customer
// typed inline; otherwise an existing customer record was picked.
func (m *Manager) HandleCustomerSelect(customerID string, data *model.CustomerData) Patch {
	snapshot := data.Normalized()
	m.showForm = true

	if strings.TrimSpace(customerID) == "" {
		m.selectedID = nil
		m.original = nil
		m.shouldFocusName = *snapshot.Name == ""
		return Patch{Customer: snapshot}
	}

	m.selectedID = model.String(customerID)
	m.original = snapshot.Clone()
	m.shouldFocusName = false
	return Patch{CustomerID: model.String(customerID), Customer: snapshot}
}

// HandleCustomerClear resets to the "no customer" state
func (m *Manager) HandleCustomerClear() Patch {
	m.selectedID = nil
	m.original = nil
	m.showForm = false
	m.shouldFocusName = false
	return Patch{Customer: model.CustomerData{Name: model.String("")}}
}
