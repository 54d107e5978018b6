package wizard

// ContactGroupKey is the error key reported when no contact method is given.
const ContactGroupKey = "contact"

// LeadDefinition is the four-step lead intake form.
func LeadDefinition() Definition {
	return Definition{
		Kind: KindLead,
		Steps: []Step{
			{
				Title: "Contact Information",
				Fields: []Field{
					{Name: "leadName", Label: "Lead name", Required: true},
					{Name: "website", Label: "Website"},
					{Name: "companyType", Label: "Company type"},
					{Name: "industry", Label: "Industry", Required: true},
					{Name: "subIndustry", Label: "Sub-industry"},
					{Name: "leadSource", Label: "Lead source", Required: true},
					{Name: "leadOwner", Label: "Lead owner", Required: true, Key: "assigned_to"},
					{Name: "region", Label: "Region"},
					{Name: "contactName", Label: "Contact name", Required: true},
					{Name: "contactTitle", Label: "Contact title"},
					{Name: "department", Label: "Department"},
					{Name: "phone", Label: "Phone"},
					{Name: "mobile", Label: "Mobile"},
					{Name: "email", Label: "Email"},
					{Name: "city", Label: "City"},
					{Name: "state", Label: "State"},
					{Name: "country", Label: "Country"},
				},
				AnyOf: []AnyOf{{
					Key:     ContactGroupKey,
					Fields:  []string{"phone", "mobile", "email"},
					Message: "At least one contact method (phone, mobile, or email) is required",
				}},
			},
			{
				Title: "Business & Opportunity",
				Fields: []Field{
					{Name: "salesStage", Label: "Sales stage", Required: true},
					{Name: "priority", Label: "Priority"},
					{Name: "closingDate", Label: "Closing date", Key: "expected_closing_date"},
					{Name: "estimatedValue", Label: "Estimated deal value", Required: true, Number: true},
					{Name: "probability", Label: "Probability", Number: true},
					{Name: "primaryProduct", Label: "Primary product interest", Required: true},
					{Name: "secondaryProducts", Label: "Secondary products", Array: true},
					{Name: "budget", Label: "Budget"},
					{Name: "timeline", Label: "Timeline"},
				},
			},
			{
				Title: "Qualifying Information",
				Fields: []Field{
					{Name: "currentSolution", Label: "Current solution"},
					{Name: "painPoints", Label: "Pain points"},
					{Name: "competitorInfo", Label: "Competitor info"},
					{Name: "nextSteps", Label: "Next steps"},
					{Name: "tags", Label: "Tags", Array: true},
					{Name: "notes", Label: "Notes"},
				},
			},
			{Title: "Review"},
		},
	}
}

// AccountDefinition is the four-step account intake form.
func AccountDefinition() Definition {
	return Definition{
		Kind: KindAccount,
		Steps: []Step{
			{
				Title: "Basic Information",
				Fields: []Field{
					{Name: "accountName", Label: "Account name", Required: true},
					{Name: "displayName", Label: "Display name"},
					{Name: "website", Label: "Website"},
					{Name: "industry", Label: "Industry", Required: true},
					{Name: "subIndustry", Label: "Sub-industry"},
					{Name: "companyType", Label: "Company type"},
				},
			},
			{
				Title: "Business Details",
				Fields: []Field{
					{Name: "annualRevenue", Label: "Annual revenue", Number: true},
					{Name: "employeeCount", Label: "Employee count", Number: true},
					{Name: "territory", Label: "Territory"},
					{Name: "accountOwner", Label: "Account owner"},
					{Name: "accountStatus", Label: "Account status"},
					{Name: "gstNumber", Label: "GST number"},
					{Name: "panNumber", Label: "PAN number"},
					{Name: "creditLimit", Label: "Credit limit", Number: true},
					{Name: "paymentTerms", Label: "Payment terms"},
				},
			},
			{
				Title: "Contacts & Addresses",
				Fields: []Field{
					{Name: "contacts", Label: "Contacts", Array: true, Required: true, Message: "At least one contact is required"},
					{Name: "addresses", Label: "Addresses", Array: true, Required: true, Message: "At least one address is required"},
				},
			},
			{Title: "Review & Submit"},
		},
	}
}

// ProductDefinition is the two-step product intake form.
func ProductDefinition() Definition {
	return Definition{
		Kind: KindProduct,
		Steps: []Step{
			{
				Title: "Basic Details",
				Fields: []Field{
					{Name: "productName", Label: "Product name", Required: true},
					{Name: "category", Label: "Category", Required: true},
					{Name: "principal", Label: "Principal"},
					{Name: "description", Label: "Description"},
					{Name: "hsnCode", Label: "HSN code"},
				},
			},
			{
				Title: "Pricing",
				Fields: []Field{
					{Name: "price", Label: "Price", Required: true, Number: true},
					{Name: "taxRate", Label: "Tax rate", Number: true},
					{Name: "status", Label: "Status"},
				},
			},
		},
	}
}
