//go:build !paymentsim

package checkout

// SimulationEnabled - в обычной сборке симуляция оплаты недоступна
func SimulationEnabled() bool { return false }
