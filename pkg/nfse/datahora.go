package nfse

import "time"

// Relogio é a fonte de tempo injetável usada na derivação de identificadores e
// nos carimbos de emissão. Mantém builders puros e testáveis.
type Relogio func() time.Time

// RelogioSistema lê o relógio local da máquina.
func RelogioSistema() time.Time { return time.Now() }

// DesvioRelogioEmissao é subtraído do instante atual no carimbo de emissão da
// transmissão, tolerando pequena defasagem entre o relógio local e o do
// ambiente nacional (que rejeita dhEmi no futuro).
const DesvioRelogioEmissao = 30 * time.Second

// FormatarDataHoraLocal produz o carimbo exigido pelo leiaute:
// YYYY-MM-DDTHH:mm:ss±HH:MM, em hora local da máquina com o offset UTC
// explícito (sem normalizar para UTC).
func FormatarDataHoraLocal(t time.Time) string {
	return t.Format("2006-01-02T15:04:05-07:00")
}

// FormatarData produz a data de competência no formato YYYY-MM-DD usando os
// campos de calendário locais do instante (não converte para UTC, evitando
// deslocamento de data perto da meia-noite em fusos negativos).
func FormatarData(t time.Time) string {
	return t.Format("2006-01-02")
}
