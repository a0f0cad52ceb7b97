package templates

// catalog is the fixed, ordered list of dossier sections for a Chilean
// battery-storage permitting application. Order here is the assembly order
// of the final document and is never re-sorted at runtime.
var catalog = []Template{
	{
		Key:         "project-overview",
		Title:       "Descripción General del Proyecto",
		Description: "Identification of the project, its owner, and the installation site.",
		Category:    CategoryOther,
		Inputs: []InputSpec{
			{Key: "projectName", Label: "Project name", Type: InputText, Required: true,
				Validation: Validation{MinLength: iptr(3), MaxLength: iptr(120)}},
			{Key: "projectDescription", Label: "Project description", Type: InputText, Required: true,
				Validation: Validation{MinLength: iptr(50), MaxLength: iptr(4000)}},
			{Key: "region", Label: "Region", Type: InputText, Required: true,
				Validation: Validation{MinLength: iptr(3), MaxLength: iptr(80)}},
		},
	},
	{
		Key:          "site-description",
		Title:        "Descripción del Emplazamiento",
		Description:  "Location, land area, and site plan of the storage facility.",
		Category:     CategoryEnvironmental,
		Dependencies: []string{"project-overview"},
		Inputs: []InputSpec{
			{Key: "siteAddress", Label: "Site address", Type: InputText, Required: true,
				Validation: Validation{MinLength: iptr(10), MaxLength: iptr(300)}},
			{Key: "landAreaHectares", Label: "Land area (ha)", Type: InputNumber, Required: true,
				Validation: Validation{Min: fptr(0.1), Max: fptr(10000)}},
			{Key: "sitePlan", Label: "Site plan", Type: InputFile, Required: true,
				Validation: Validation{FileTypes: []string{".pdf"}}},
		},
	},
	{
		Key:          "environmental-impact",
		Title:        "Declaración de Impacto Ambiental (DIA)",
		Description:  "Environmental baseline and impact declaration for SEIA evaluation.",
		Category:     CategoryEnvironmental,
		Dependencies: []string{"site-description"},
		Inputs: []InputSpec{
			{Key: "impactSummary", Label: "Impact summary", Type: InputText, Required: true,
				Validation: Validation{MinLength: iptr(100), MaxLength: iptr(8000)}},
			{Key: "baselineStudy", Label: "Baseline study", Type: InputFile, Required: true,
				Validation: Validation{FileTypes: []string{".pdf"}}},
			{Key: "seiaRequired", Label: "Requires full SEIA study", Type: InputBoolean, Required: true},
		},
	},
	{
		Key:         "technical-specifications",
		Title:       "Especificaciones Técnicas del Sistema",
		Description: "Capacity, chemistry, and commissioning schedule of the battery system.",
		Category:    CategoryTechnical,
		Inputs: []InputSpec{
			{Key: "capacityMW", Label: "Power capacity (MW)", Type: InputNumber, Required: true,
				Validation: Validation{Min: fptr(0.1), Max: fptr(2000)}},
			{Key: "storageMWh", Label: "Energy capacity (MWh)", Type: InputNumber, Required: true,
				Validation: Validation{Min: fptr(0.1), Max: fptr(10000)}},
			{Key: "batteryChemistry", Label: "Battery chemistry", Type: InputText, Required: true,
				Validation: Validation{MinLength: iptr(3), MaxLength: iptr(60)}},
			{Key: "commissioningDate", Label: "Planned commissioning date", Type: InputDate, Required: true},
		},
	},
	{
		Key:          "grid-connection",
		Title:        "Conexión al Sistema Eléctrico Nacional",
		Description:  "Interconnection point and connection study for the Coordinador Eléctrico Nacional.",
		Category:     CategoryTechnical,
		Dependencies: []string{"technical-specifications"},
		Inputs: []InputSpec{
			{Key: "substationName", Label: "Connecting substation", Type: InputText, Required: true,
				Validation: Validation{MinLength: iptr(3), MaxLength: iptr(120)}},
			{Key: "interconnectionVoltageKV", Label: "Interconnection voltage (kV)", Type: InputNumber, Required: true,
				Validation: Validation{Min: fptr(12), Max: fptr(500)}},
			{Key: "connectionStudy", Label: "Connection study", Type: InputFile, Required: true,
				Validation: Validation{FileTypes: []string{".pdf"}}},
		},
	},
	{
		Key:          "safety-systems",
		Title:        "Sistemas de Seguridad y Contra Incendios",
		Description:  "Fire suppression and thermal runaway mitigation measures.",
		Category:     CategoryTechnical,
		Dependencies: []string{"technical-specifications"},
		Inputs: []InputSpec{
			{Key: "fireSuppressionSystem", Label: "Fire suppression system", Type: InputText, Required: true,
				Validation: Validation{MinLength: iptr(10), MaxLength: iptr(2000)}},
			{Key: "thermalRunawayMitigation", Label: "Thermal runaway mitigation in place", Type: InputBoolean, Required: true},
			{Key: "safetyDataSheet", Label: "Safety data sheet", Type: InputFile, Required: true,
				Validation: Validation{FileTypes: []string{".pdf"}}},
		},
	},
	{
		Key:          "electrical-permit",
		Title:        "Declaración Eléctrica ante la SEC",
		Description:  "Electrical installation declaration filed with the Superintendencia de Electricidad y Combustibles.",
		Category:     CategoryRegulatory,
		Dependencies: []string{"grid-connection"},
		Inputs: []InputSpec{
			{Key: "secFilingNumber", Label: "SEC filing number", Type: InputText, Required: true,
				Validation: Validation{MinLength: iptr(4), MaxLength: iptr(40)}},
			{Key: "filingDate", Label: "Filing date", Type: InputDate, Required: true},
			{Key: "singleLineDiagram", Label: "Single-line diagram", Type: InputFile, Required: true,
				Validation: Validation{FileTypes: []string{".pdf"}}},
		},
	},
	{
		Key:          "land-use-permit",
		Title:        "Informe de Uso de Suelo",
		Description:  "Municipal zoning certificate and land use compatibility report.",
		Category:     CategoryRegulatory,
		Dependencies: []string{"site-description"},
		Inputs: []InputSpec{
			{Key: "zoningClassification", Label: "Zoning classification", Type: InputText, Required: true,
				Validation: Validation{MinLength: iptr(2), MaxLength: iptr(120)}},
			{Key: "municipalCertificate", Label: "Municipal certificate", Type: InputFile, Required: true,
				Validation: Validation{FileTypes: []string{".pdf"}}},
		},
	},
	{
		Key:          "construction-permit",
		Title:        "Permiso de Edificación",
		Description:  "Building permit application for the facility works.",
		Category:     CategoryRegulatory,
		Dependencies: []string{"land-use-permit"},
		Inputs: []InputSpec{
			{Key: "constructionStartDate", Label: "Planned construction start", Type: InputDate, Required: true},
			{Key: "buildingPlans", Label: "Building plans", Type: InputFile, Required: true,
				Validation: Validation{FileTypes: []string{".pdf"}}},
			{Key: "contractorName", Label: "Main contractor", Type: InputText, Required: false,
				Validation: Validation{MaxLength: iptr(120)}},
		},
	},
	{
		Key:         "financial-guarantees",
		Title:       "Garantías Financieras y Seguros",
		Description: "Project budget and insurance coverage backing the application.",
		Category:    CategoryFinancial,
		Inputs: []InputSpec{
			{Key: "projectBudgetUF", Label: "Project budget (UF)", Type: InputNumber, Required: true,
				Validation: Validation{Min: fptr(0)}},
			{Key: "insuranceCertificate", Label: "Insurance certificate", Type: InputFile, Required: true,
				Validation: Validation{FileTypes: []string{".pdf"}}},
		},
	},
	{
		Key:          "decommissioning-plan",
		Title:        "Plan de Cierre y Desmantelamiento",
		Description:  "End-of-life restoration plan and decommissioning reserve.",
		Category:     CategoryFinancial,
		Dependencies: []string{"technical-specifications"},
		Inputs: []InputSpec{
			{Key: "restorationPlan", Label: "Site restoration plan", Type: InputText, Required: true,
				Validation: Validation{MinLength: iptr(100), MaxLength: iptr(8000)}},
			{Key: "decommissioningReserveUF", Label: "Decommissioning reserve (UF)", Type: InputNumber, Required: true,
				Validation: Validation{Min: fptr(0)}},
		},
	},
	{
		Key:         "community-engagement",
		Title:       "Participación Ciudadana",
		Description: "Summary of community consultation carried out for the project.",
		Category:    CategoryOther,
		Inputs: []InputSpec{
			{Key: "consultationSummary", Label: "Consultation summary", Type: InputText, Required: true,
				Validation: Validation{MinLength: iptr(50), MaxLength: iptr(4000)}},
			{Key: "firstMeetingDate", Label: "First community meeting", Type: InputDate, Required: true},
			{Key: "indigenousConsultation", Label: "Indigenous consultation required", Type: InputBoolean, Required: true},
		},
	},
	{
		Key:         "annexes",
		Title:       "Anexos",
		Description: "Optional supporting material appended to the dossier.",
		Category:    CategoryOther,
		Inputs: []InputSpec{
			{Key: "notes", Label: "Annex notes", Type: InputText, Required: false,
				Validation: Validation{MaxLength: iptr(4000)}},
		},
	},
}

func iptr(v int) *int         { return &v }
func fptr(v float64) *float64 { return &v }
