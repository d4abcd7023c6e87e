package entity

// Notification evento a despachar tras una transición de estado.
// Las transiciones lo emiten y el despachador lo entrega best-effort:
// un fallo de entrega se registra pero jamás revierte la transición.
type Notification struct {
	Recipient string
	Subject   string
	Body      string
}
