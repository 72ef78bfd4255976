// internal/writer/types.go
package writer

// StatusPlan is where the status block lives on the telemetry endpoint.
type StatusPlan struct {
	Endpoint string
	UnitID   uint8
	BaseSlot uint16
	BootID   string
}

// endpointClient is the exact contract the writer uses.
// *wmodbus.EndpointClient satisfies it.
type endpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}
