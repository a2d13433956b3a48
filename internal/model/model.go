// Package model holds the persisted entities of the tailor service.
// Every tenant-owned row carries TailorID, the owning tailor's account id.
package model

// All returns every model in migration order
func All() []interface{} {
	return []interface{}{
		&Account{},
		&Customer{},
		&Measurement{},
		&Supplier{},
		&InventoryItem{},
		&WorkflowTemplate{},
		&TaskDefinition{},
		&Order{},
		&OrderTask{},
		&OrderImage{},
		&OrderMaterial{},
		&Appointment{},
	}
}

// Owned is implemented by every tenant-owned entity
type Owned interface {
	OwnerID() uint
}

func (c Customer) OwnerID() uint         { return c.TailorID }
func (m Measurement) OwnerID() uint      { return m.TailorID }
func (s Supplier) OwnerID() uint         { return s.TailorID }
func (i InventoryItem) OwnerID() uint    { return i.TailorID }
func (w WorkflowTemplate) OwnerID() uint { return w.TailorID }
func (o Order) OwnerID() uint            { return o.TailorID }
func (t OrderTask) OwnerID() uint        { return t.TailorID }
func (i OrderImage) OwnerID() uint       { return i.TailorID }
func (m OrderMaterial) OwnerID() uint    { return m.TailorID }
func (a Appointment) OwnerID() uint      { return a.TailorID }
