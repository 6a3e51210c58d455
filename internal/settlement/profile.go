package settlement

// Profile describes the column layout of a bank return export.
// Adding a bank is adding a Profile to the profiles slice.
type Profile struct {
	Name string
	// NossoNumeroCol and AmountCol must be present for the profile to match.
	NossoNumeroCol string
	AmountCol      string
	DateCol        string
	// ReferenceCol is optional; rows without one get a reference derived
	// from the nosso número.
	ReferenceCol string
	DateLayouts  []string
}

func (p Profile) requiredCols() []string {
	return []string{p.NossoNumeroCol, p.AmountCol, p.DateCol}
}

// profiles is the ordered list of layouts tried during detection.
var profiles = []Profile{
	{
		Name:           "tesouraria",
		NossoNumeroCol: "nosso_numero",
		ReferenceCol:   "referencia",
		DateCol:        "data_pagamento",
		AmountCol:      "valor",
		DateLayouts:    []string{"2006-01-02", "02/01/2006"},
	},
	{
		Name:           "bb-retorno",
		NossoNumeroCol: "Nosso Número",
		ReferenceCol:   "Autenticação",
		DateCol:        "Data Crédito",
		AmountCol:      "Valor Pago",
		DateLayouts:    []string{"02/01/2006", "02.01.2006"},
	},
}
