// Copyright 2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package fundamentals

// Metric is a canonical financial line item that fundamentals records are
// built from
type Metric string

const (
	Revenue            Metric = "revenue"
	COGS               Metric = "cogs"
	OperatingIncome    Metric = "operating_income"
	NetIncome          Metric = "net_income"
	Shares             Metric = "shares"
	OperatingCashFlow  Metric = "operating_cash_flow"
	InvestingCashFlow  Metric = "investing_cash_flow"
	FinancingCashFlow  Metric = "financing_cash_flow"
	CapitalExpenditure Metric = "capex"
	TotalAssets        Metric = "total_assets"
	TotalLiabilities   Metric = "total_liabilities"
	CurrentLiabilities Metric = "current_liabilities"
	LongTermDebt       Metric = "long_term_debt"
	StockholdersEquity Metric = "stockholders_equity"
)

// Group is a financial statement and the metrics read from it
type Group struct {
	Name    string
	Metrics []Metric
}

var Groups = []Group{
	{
		Name:    "income statement",
		Metrics: []Metric{Revenue, COGS, OperatingIncome, NetIncome, Shares},
	},
	{
		Name:    "cash flow",
		Metrics: []Metric{OperatingCashFlow, InvestingCashFlow, FinancingCashFlow, CapitalExpenditure},
	},
	{
		Name:    "balance sheet",
		Metrics: []Metric{TotalAssets, TotalLiabilities, CurrentLiabilities, LongTermDebt, StockholdersEquity},
	},
}

// Taxonomy maps each metric to the tags, in priority order, that a filer
// reporting under the named accounting standard may use for it
type Taxonomy struct {
	Name string
	Tags map[Metric][]string
}

var USGAAP = &Taxonomy{
	Name: "us-gaap",
	Tags: map[Metric][]string{
		Revenue: {
			"SalesRevenueNet",
			"Revenues",
			"RevenueFromContractWithCustomerExcludingAssessedTax",
			"RevenueFromContractWithCustomerIncludingAssessedTax",
		},
		COGS: {
			"CostOfRevenue",
			"CostOfGoodsAndServicesSold",
			"CostOfRevenueIncludingSpecialItems",
			"CostOfGoodsSold",
		},
		OperatingIncome: {"OperatingIncomeLoss"},
		NetIncome: {
			"NetIncomeLoss",
			"NetIncomeLossAvailableToCommonStockholdersBasic",
			"ProfitLoss",
		},
		Shares: {"WeightedAverageNumberOfDilutedSharesOutstanding"},
		OperatingCashFlow: {
			"NetCashProvidedByUsedInOperatingActivities",
			"NetCashProvidedByUsedInOperatingActivitiesContinuingOperations",
		},
		InvestingCashFlow: {
			"NetCashProvidedByUsedInInvestingActivities",
			"NetCashProvidedByUsedInInvestingActivitiesContinuingOperations",
		},
		FinancingCashFlow: {
			"NetCashProvidedByUsedInFinancingActivities",
			"NetCashProvidedByUsedInFinancingActivitiesContinuingOperations",
		},
		CapitalExpenditure: {
			"PaymentsToAcquirePropertyPlantAndEquipment",
			"PaymentsToAcquireProductiveAssets",
		},
		TotalAssets:        {"Assets"},
		TotalLiabilities:   {"Liabilities"},
		CurrentLiabilities: {"LiabilitiesCurrent"},
		LongTermDebt: {
			"LongTermDebtNoncurrent",
			"LongTermDebt",
		},
		StockholdersEquity: {
			"StockholdersEquity",
			"StockholdersEquityIncludingPortionAttributableToNoncontrollingInterest",
		},
	},
}

var IFRS = &Taxonomy{
	Name: "ifrs-full",
	Tags: map[Metric][]string{
		Revenue: {
			"Revenue",
			"RevenueFromContractsWithCustomers",
		},
		COGS:            {"CostOfSales"},
		OperatingIncome: {"ProfitLossFromOperatingActivities"},
		NetIncome: {
			"ProfitLossAttributableToOwnersOfParent",
			"ProfitLoss",
		},
		Shares: {
			"AdjustedWeightedAverageShares",
			"WeightedAverageShares",
		},
		OperatingCashFlow: {"CashFlowsFromUsedInOperatingActivities"},
		InvestingCashFlow: {"CashFlowsFromUsedInInvestingActivities"},
		FinancingCashFlow: {"CashFlowsFromUsedInFinancingActivities"},
		CapitalExpenditure: {
			"PurchaseOfPropertyPlantAndEquipmentClassifiedAsInvestingActivities",
			"PurchaseOfPropertyPlantAndEquipment",
		},
		TotalAssets:        {"Assets"},
		TotalLiabilities:   {"Liabilities"},
		CurrentLiabilities: {"CurrentLiabilities"},
		LongTermDebt: {
			"NoncurrentPortionOfNoncurrentBorrowings",
			"LongtermBorrowings",
		},
		StockholdersEquity: {
			"EquityAttributableToOwnersOfParent",
			"Equity",
		},
	},
}

// Taxonomies lists the supported accounting standards in preference order
var Taxonomies = []*Taxonomy{USGAAP, IFRS}
