//go:build paymentsim

package checkout

// SimulationEnabled - сборка с тегом paymentsim разрешает принудительное подтверждение оплаты
func SimulationEnabled() bool { return true }
