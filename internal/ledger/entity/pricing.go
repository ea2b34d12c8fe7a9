package entity

// PriceQuote 价格解析结果，任何情况下都不为空值
type PriceQuote struct {
	PlanPrice   float64 `json:"plan_price"`
	ActualPrice float64 `json:"actual_price"`
}

// ResolveEffectivePrice 解析项目在某半期下的有效时薪。
// 优先级：关联覆盖价 → 项目默认价 → 旧版 unit_price → 0。
// plan 与 actual 各自独立走覆盖→默认两级，旧版单价兜底两者。
func ResolveEffectivePrice(project *Project, link *PeriodProjectLink) PriceQuote {
	var quote PriceQuote

	quote.PlanPrice = resolveRate(linkPlan(link), projectPlan(project), legacyUnit(project))
	quote.ActualPrice = resolveRate(linkActual(link), projectActual(project), legacyUnit(project))

	return quote
}

func resolveRate(override, fallback, legacy *float64) float64 {
	if override != nil {
		return *override
	}
	if fallback != nil {
		return *fallback
	}
	if legacy != nil {
		return *legacy
	}
	return 0
}

func linkPlan(link *PeriodProjectLink) *float64 {
	if link == nil {
		return nil
	}
	return link.PlanPrice
}

func linkActual(link *PeriodProjectLink) *float64 {
	if link == nil {
		return nil
	}
	return link.ActualPrice
}

func projectPlan(p *Project) *float64 {
	if p == nil {
		return nil
	}
	return p.PlanPrice
}

func projectActual(p *Project) *float64 {
	if p == nil {
		return nil
	}
	return p.ActualPrice
}

func legacyUnit(p *Project) *float64 {
	if p == nil {
		return nil
	}
	return p.UnitPrice
}
