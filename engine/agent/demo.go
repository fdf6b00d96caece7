package agent

// Fixed payloads returned when no usable Anthropic key is configured.

func demoBoardBrief() BoardBrief {
	return BoardBrief{
		Title: "Project Board Brief",
		ExecutiveSummary: "The project remains on schedule for its next funding milestone. " +
			"Pre-construction scope is complete and the design team has closed the open RFIs. " +
			"Budget exposure is concentrated in site utilities and long-lead electrical equipment.",
		KeyPoints: []string{
			"Design development drawings were approved by the owner's representative.",
			"Guaranteed maximum price negotiations are scheduled to close within 30 days.",
			"Community engagement sessions drew strong support from neighborhood groups.",
		},
		Risks: []BriefRisk{
			{
				Title:      "Long-lead switchgear",
				Severity:   "high",
				Mitigation: "Release early procurement package and confirm vendor slot reservations.",
			},
			{
				Title:      "Utility relocation",
				Severity:   "medium",
				Mitigation: "Coordinate joint trench schedule with the municipal utility.",
			},
		},
		Recommendations: []string{
			"Authorize early procurement of electrical equipment.",
			"Hold a contingency reserve of 5% for site utility work.",
		},
		NextSteps: []string{
			"Finalize GMP proposal review.",
			"Present updated schedule at the next board meeting.",
		},
	}
}

func demoAssessmentTrends() AssessmentTrends {
	return AssessmentTrends{
		Summary: "Assessed values in the project area have risen steadily over the last three cycles, " +
			"led by commercial parcels along the transit corridor.",
		Trends: []Trend{
			{
				Name:        "Commercial assessed value growth",
				Direction:   "increasing",
				Description: "Commercial parcels show consistent year-over-year growth in assessed value.",
				Citations: []StructuredCitation{
					{
						Number:     1,
						SourceID:   "demo-assessment-roll",
						SourceName: "Demo Assessment Roll",
						Quote:      "Commercial assessed values increased 6.2% year over year.",
					},
				},
			},
			{
				Name:        "Residential vacancy",
				Direction:   "decreasing",
				Description: "Residential vacancy declined as new units were absorbed.",
				Citations:   []StructuredCitation{},
			},
		},
		Metrics: []Metric{
			{
				Label:  "Commercial assessed value growth",
				Value:  "6.2",
				Unit:   "%",
				Period: "FY2024",
				Citations: []StructuredCitation{
					{
						Number:     1,
						SourceID:   "demo-assessment-roll",
						SourceName: "Demo Assessment Roll",
						Quote:      "Commercial assessed values increased 6.2% year over year.",
					},
				},
			},
		},
		DataGaps: []string{
			"Parcel-level data for FY2021 was not included in the provided sources.",
		},
	}
}

func demoOZRFSection() OZRFSection {
	return OZRFSection{
		SectionTitle: "Opportunity Zone Community Impact",
		Narrative: "The project delivers mixed-use space within a designated opportunity zone, " +
			"creating permanent jobs and affordable housing units for local residents.",
		CommunityImpact: []Metric{
			{
				Label:     "Permanent jobs created",
				Value:     "120",
				Citations: []StructuredCitation{},
			},
			{
				Label:     "Affordable housing units",
				Value:     "48",
				Unit:      "units",
				Citations: []StructuredCitation{},
			},
		},
		Investment: []Metric{
			{
				Label:     "Qualified opportunity fund investment",
				Value:     "18.5",
				Unit:      "USD millions",
				Citations: []StructuredCitation{},
			},
		},
		ComplianceNotes: []string{
			"Substantial improvement test to be documented at the 30-month mark.",
		},
	}
}
