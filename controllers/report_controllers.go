package controllers

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/comandaonline/comanda-api/middlewares"
	"github.com/comandaonline/comanda-api/models"
	"github.com/comandaonline/comanda-api/utils"
)

type ReportController struct {
	DB *gorm.DB
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db}
}

type SalesByProductReport struct {
	ProductID    uint            `json:"productId"`
	ProductName  string          `json:"productName"`
	QuantitySold int             `json:"quantitySold"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

type WaiterReportRow struct {
	WaiterID            uint            `json:"waiterId"`
	WaiterName          string          `json:"waiterName"`
	WaiterEmail         string          `json:"waiterEmail"`
	OpenCommandsCount   int64           `json:"openCommandsCount"`
	ClosedCommandsCount int             `json:"closedCommandsCount"`
	ItemsSold           int             `json:"itemsSold"`
	TotalRevenue        decimal.Decimal `json:"totalRevenue"`
}

// parsePeriod converte o seletor de período na janela [start, end].
// Relatórios filtram comandas fechadas por updated_at: o fechamento grava
// status e closedBy, então o updated_at marca o momento do fechamento.
func parsePeriod(c *gin.Context) (start, end time.Time, err error) {
	now := time.Now()
	end = now

	switch c.Query("period") {
	case "12hours":
		start = now.Add(-12 * time.Hour)
	case "week":
		start = now.AddDate(0, 0, -7)
	case "month":
		start = now.AddDate(0, -1, 0)
	case "custom":
		start, err = parseReportDate(c.Query("start"))
		if err != nil {
			return start, end, errors.New("Parâmetro 'start' é obrigatório para período custom")
		}
		if rawEnd := c.Query("end"); rawEnd != "" {
			end, err = parseReportDate(rawEnd)
			if err != nil {
				return start, end, errors.New("Parâmetro 'end' inválido")
			}
		}
	default:
		return start, end, errors.New("Período inválido")
	}

	return start, end, nil
}

func parseReportDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("empty date")
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}

// loadOwnedBar resolve barId e garante que o solicitante é o dono.
// Escreve a resposta de erro e retorna ok=false quando barra a requisição.
func (rc *ReportController) loadOwnedBar(c *gin.Context) (*models.Bar, bool) {
	actor := middlewares.CurrentUser(c)

	barID, err := strconv.ParseUint(c.Query("barId"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("O parâmetro barId é obrigatório"))
		return nil, false
	}

	var bar models.Bar
	if err := rc.DB.First(&bar, barID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("Bar não encontrado"))
		return nil, false
	}

	if actor.Role != models.RoleOwner || bar.OwnerID != actor.ID {
		utils.RespondError(c, http.StatusForbidden, errors.New("Apenas o dono pode acessar relatórios"))
		return nil, false
	}

	return &bar, true
}

// closedCommandsInWindow carrega as comandas fechadas do bar dentro da
// janela, com itens ativos precificados mesmo se o prato saiu do cardápio.
func (rc *ReportController) closedCommandsInWindow(barID uint, start, end time.Time) ([]models.Command, error) {
	var commands []models.Command
	err := rc.DB.Where("bar_id = ? AND status = ? AND updated_at BETWEEN ? AND ?",
		barID, models.CommandClosed, start, end).
		Order("updated_at desc").
		Preload("Table").
		Preload("Items.MenuItem", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Find(&commands).Error
	return commands, err
}

func sumCommandTotals(commands []models.Command) (totalRevenue decimal.Decimal, itemsSold int) {
	totalRevenue = decimal.Zero
	for _, command := range commands {
		totalRevenue = totalRevenue.Add(command.Total)
		for _, item := range command.Items {
			itemsSold += item.Quantity
		}
	}
	return totalRevenue, itemsSold
}

// RevenueReport -> GET /commands/reports?barId&period[&start][&end]
func (rc *ReportController) RevenueReport(c *gin.Context) {
	bar, ok := rc.loadOwnedBar(c)
	if !ok {
		return
	}

	start, end, err := parsePeriod(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	commands, err := rc.closedCommandsInWindow(bar.ID, start, end)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao gerar relatório"))
		return
	}

	totalRevenue, itemsSold := sumCommandTotals(commands)

	utils.RespondJSON(c, http.StatusOK, "Relatório de faturamento", gin.H{
		"period":        c.Query("period"),
		"startDate":     start,
		"endDate":       end,
		"totalCommands": len(commands),
		"totalRevenue":  totalRevenue,
		"itemsSold":     itemsSold,
		"commands":      commands,
	})
}

// FullReport -> GET /reports/full: faturamento + vendas por produto +
// desempenho dos garçons
func (rc *ReportController) FullReport(c *gin.Context) {
	bar, ok := rc.loadOwnedBar(c)
	if !ok {
		return
	}

	start, end, err := parsePeriod(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	commands, err := rc.closedCommandsInWindow(bar.ID, start, end)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao gerar relatório"))
		return
	}

	totalRevenue, itemsSold := sumCommandTotals(commands)

	waiters, err := rc.buildWaitersReport(bar, start, end, commands)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao gerar relatório"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Relatório completo", gin.H{
		"period":         c.Query("period"),
		"startDate":      start,
		"endDate":        end,
		"totalCommands":  len(commands),
		"totalRevenue":   totalRevenue,
		"itemsSold":      itemsSold,
		"salesByProduct": salesByProduct(commands),
		"waitersReport":  waiters,
	})
}

// WaitersReport -> GET /waiters/reports
func (rc *ReportController) WaitersReport(c *gin.Context) {
	bar, ok := rc.loadOwnedBar(c)
	if !ok {
		return
	}

	start, end, err := parsePeriod(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	commands, err := rc.closedCommandsInWindow(bar.ID, start, end)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao gerar relatório"))
		return
	}

	waiters, err := rc.buildWaitersReport(bar, start, end, commands)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errors.New("Erro ao gerar relatório"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Relatório de garçons", gin.H{
		"period":    c.Query("period"),
		"startDate": start,
		"endDate":   end,
		"waiters":   waiters,
	})
}

// salesByProduct agrupa os itens das comandas fechadas por item do cardápio.
func salesByProduct(commands []models.Command) []SalesByProductReport {
	byProduct := make(map[uint]*SalesByProductReport)
	var order []uint

	for _, command := range commands {
		for _, item := range command.Items {
			entry, seen := byProduct[item.MenuItemID]
			if !seen {
				entry = &SalesByProductReport{
					ProductID:    item.MenuItemID,
					ProductName:  item.MenuItem.Name,
					TotalRevenue: decimal.Zero,
				}
				byProduct[item.MenuItemID] = entry
				order = append(order, item.MenuItemID)
			}
			entry.QuantitySold += item.Quantity
			entry.TotalRevenue = entry.TotalRevenue.Add(
				item.MenuItem.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}

	report := make([]SalesByProductReport, 0, len(order))
	for _, id := range order {
		report = append(report, *byProduct[id])
	}
	return report
}

// buildWaitersReport computa o desempenho do dono e de cada garçom/gerente
// ativo da equipe. Itens em comandas ainda abertas não contam como venda
// confirmada; só entra receita de comanda que não está mais aberta.
func (rc *ReportController) buildWaitersReport(bar *models.Bar, start, end time.Time, closedCommands []models.Command) ([]WaiterReportRow, error) {
	var staff []models.User
	if err := rc.DB.Where("owner_id = ? AND role IN ?", bar.OwnerID, []string{models.RoleWaiter, models.RoleManager}).
		Find(&staff).Error; err != nil {
		return nil, err
	}

	var owner models.User
	if err := rc.DB.First(&owner, bar.OwnerID).Error; err != nil {
		return nil, err
	}
	team := append([]models.User{owner}, staff...)

	rows := make([]WaiterReportRow, 0, len(team))
	for _, member := range team {
		row := WaiterReportRow{
			WaiterID:     member.ID,
			WaiterName:   member.DisplayName(),
			WaiterEmail:  member.Email,
			TotalRevenue: decimal.Zero,
		}

		// Comandas abertas pelo membro dentro da janela, qualquer status atual.
		if err := rc.DB.Model(&models.Command{}).
			Where("bar_id = ? AND opened_by_id = ? AND created_at BETWEEN ? AND ?",
				bar.ID, member.ID, start, end).
			Count(&row.OpenCommandsCount).Error; err != nil {
			return nil, err
		}

		for _, command := range closedCommands {
			if command.ClosedByID != nil && *command.ClosedByID == member.ID {
				row.ClosedCommandsCount++
			}
			for _, item := range command.Items {
				if item.AddedByID != member.ID {
					continue
				}
				row.ItemsSold += item.Quantity
				row.TotalRevenue = row.TotalRevenue.Add(
					item.MenuItem.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
			}
		}

		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalRevenue.GreaterThan(rows[j].TotalRevenue)
	})

	return rows, nil
}
