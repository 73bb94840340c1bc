package config

// DefaultRuleset returns the production rule snapshot as of version 2025-07.
// The code and keyword lists are business rules maintained by the tax team;
// deployments override them via rules.yaml rather than editing this file.
func DefaultRuleset() *Ruleset {
	return &Ruleset{
		Version: "2025-07",

		ExcludedKNPBase: []string{
			"10", "12", "121", "131", "132", "192", "193", "194", "195",
			"211", "213", "221", "223", "230", "290", "342", "343", "344",
			"345", "350", "361", "390", "411", "413", "419", "421", "423",
			"424", "429", "430", "911", "912",
		},

		// Pension/social codes excluded only for operations after the
		// 2025 rule change.
		ExcludedKNPExtra: []string{
			"310", "312", "314", "315", "316", "317",
			"320", "321", "322", "324", "329",
		},
		ExtraKNPCutoffDate: "2025-07-22",

		NonBusinessKeywords: []string{
			"возврат",
			"отмена",
			// microfinance lenders
			"money-express",
			"tengeda",
			"solva lite",
			"acredit",
			"cashdrive",
			"честное слово",
			"tomi.",
			"tengebai",
			"i-credit",
			"kviku",
			"lime",
			"деньги-клик",
			"alacredit деньги",
			"quick money",
			"мани мен",
			"ccloan",
			"gmoney",
			"смартолет",
			"creditplus",
			"vivus",
			"вивус",
			"solva",
			"кредитбар",
			"qanat",
			"turbomoney",
			"займер",
			"koke",
			"tengo",
			"onecredit",
			"credit365",
			// personal transfers and payroll
			"несие",
			"социальный счет",
			"cash-in",
			"проданный автомобиль",
			"кошельк",
			"зарплата",
			"жалақы",
			"арест",
			"қайтар",
			"пенсионные",
			"конверт",
			"банкомат",
			"терминал",
			"popolnenie depozita",
			"зейнетақы",
			"социаль",
			"командировочные",
			// bookmakers
			"1xbet",
			"pin-up",
			"olimpbet",
			"parimatch",
			"winline",
			"ubet",
			"tennisi",
			"fonbet",
			"ringobet",
		},

		// Credits with KNP 099 matching these stay business income even
		// when a keyword rule fired.
		KeepKeywordsKNP099: []string{
			"возмещение",
			"возмещ.",
			"гарант",
		},

		// Mentions of Bank CenterCredit never trigger keyword exclusion.
		WhitelistBankKeywords: []string{
			"банк центр кредит",
			"банкцентркредит",
			"банк центркредит",
			"банкцентр кредит",
			"бцк",
			"bcc",
			"bank center credit",
			"bankcentrcredit",
		},

		BalanceEpsilon:     "0.01",
		SkipRatioThreshold: 0.20,

		Formula: FormulaConfig{
			ID:    "adjusted_v2",
			Notes: "sum - max - min + sum/6",
		},

		Weights: ScoreWeights{
			Balance:      0.5,
			Completeness: 0.3,
			Rows:         0.2,
		},
	}
}
