package domain

// Display lookups for response formatting. Scoring never reads these.

var statusLabels = map[Status]string{
	StatusNew:         "Novo",
	StatusQualifying:  "Em qualificação",
	StatusQualified:   "Qualificado",
	StatusNegotiating: "Em negociação",
	StatusConverted:   "Convertido",
	StatusDiscarded:   "Descartado",
	StatusArchived:    "Arquivado",
}

var sourceLabels = map[Source]string{
	SourceWebsite:        "Site",
	SourceFacebook:       "Facebook",
	SourceInstagram:      "Instagram",
	SourceLinkedIn:       "LinkedIn",
	SourceGoogleAds:      "Google Ads",
	SourceEmailMarketing: "E-mail marketing",
	SourceReferral:       "Indicação",
	SourceEvent:          "Evento",
	SourcePhone:          "Telefone",
	SourceChat:           "Chat",
	SourceOther:          "Outro",
}

var priorityLabels = map[Priority]string{
	PriorityLow:    "Baixa",
	PriorityMedium: "Média",
	PriorityHigh:   "Alta",
}

var priorityColors = map[Priority]string{
	PriorityLow:    "#28a745",
	PriorityMedium: "#ffc107",
	PriorityHigh:   "#dc3545",
}

// StatusLabel returns the display name, falling back to the raw value.
func StatusLabel(s Status) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// SourceLabel returns the display name, falling back to the raw value.
func SourceLabel(s Source) string {
	if label, ok := sourceLabels[s]; ok {
		return label
	}
	return string(s)
}

// PriorityLabel returns the display name, falling back to the raw value.
func PriorityLabel(p Priority) string {
	if label, ok := priorityLabels[p]; ok {
		return label
	}
	return string(p)
}

// PriorityColor returns a hex colour for badges; unknown tiers are grey.
func PriorityColor(p Priority) string {
	if color, ok := priorityColors[p]; ok {
		return color
	}
	return "#6c757d"
}
