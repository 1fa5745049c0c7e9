package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/petlink/app/pet/internal/model"
	"github.com/lk2023060901/petlink/app/pet/internal/service"
	"github.com/lk2023060901/petlink/pkg/logger"
	"github.com/lk2023060901/petlink/pkg/web"
	"github.com/lk2023060901/petlink/pkg/web/middleware"
)

// PetHandler 宠物 HTTP 接口
type PetHandler struct {
	svc    *service.PetService
	logger logger.Logger
}

// NewPetHandler 创建宠物处理器
func NewPetHandler(svc *service.PetService, l logger.Logger) *PetHandler {
	return &PetHandler{
		svc:    svc,
		logger: l.Named("handler.pet"),
	}
}

// RenameRequest 改名请求
type RenameRequest struct {
	Name string `json:"name" binding:"required,notblank"`
}

// CareRequest 照料请求，item_id 可选
type CareRequest struct {
	ItemID string `json:"item_id"`
}

// PurchaseRequest 购买请求
type PurchaseRequest struct {
	ItemID   string `json:"item_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"omitempty,min=1,max=99"`
}

// EquipRequest 装备请求，缺省为装备
type EquipRequest struct {
	Equipped *bool `json:"equipped"`
}

// Register 注册路由，所有接口都要求用户标识
func (h *PetHandler) Register(r gin.IRouter, mws ...gin.HandlerFunc) {
	api := r.Group("/api/v1")
	api.Use(middleware.Identity())
	api.Use(mws...)
	{
		api.GET("/pet", h.GetPet)
		api.PATCH("/pet", h.Rename)
		api.POST("/pet/actions/:action", h.Care)

		api.GET("/inventory", h.GetInventory)
		api.POST("/inventory/:item_id/equip", h.Equip)

		api.GET("/shop", h.ListShop)
		api.POST("/shop/purchase", h.Purchase)

		api.GET("/missions", h.GetMissions)
		api.POST("/missions/:id/claim", h.ClaimMission)

		api.GET("/streak", h.GetStreak)
		api.POST("/streak/claim", h.ClaimDaily)

		api.GET("/leaderboard", h.Leaderboard)
		api.GET("/transactions", h.Transactions)
	}
}

func currentUser(c *gin.Context) string {
	return middleware.GetUserID(c)
}

// bindOptional 请求体为空时跳过绑定
func bindOptional(c *gin.Context, obj any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return web.BindAndValidate(c, obj)
}

// GetPet 查询宠物
// @Summary 查询宠物，首次访问时创建
// @Tags pet
// @Produce json
// @Success 200 {object} web.Response{data=model.Pet}
// @Router /api/v1/pet [get]
func (h *PetHandler) GetPet(c *gin.Context) {
	pet, err := h.svc.GetPet(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, pet)
}

// Rename 宠物改名
// @Summary 宠物改名
// @Tags pet
// @Accept json
// @Param request body RenameRequest true "新名字"
// @Router /api/v1/pet [patch]
func (h *PetHandler) Rename(c *gin.Context) {
	var req RenameRequest
	if !web.BindAndValidate(c, &req) {
		return
	}
	res, err := h.svc.Rename(c.Request.Context(), service.RenameCommand{
		UserID: currentUser(c),
		Name:   req.Name,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, res)
}

// Care 照料动作
// @Summary 执行 feed/clean/play/rest/heal
// @Tags pet
// @Accept json
// @Param action path string true "动作"
// @Param request body CareRequest false "使用的道具"
// @Failure 402 {object} web.Response
// @Router /api/v1/pet/actions/{action} [post]
func (h *PetHandler) Care(c *gin.Context) {
	var req CareRequest
	if !bindOptional(c, &req) {
		return
	}
	res, err := h.svc.Care(c.Request.Context(), service.CareCommand{
		UserID: currentUser(c),
		Action: model.ActionType(c.Param("action")),
		ItemID: req.ItemID,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, res)
}

// GetInventory 查询背包
func (h *PetHandler) GetInventory(c *gin.Context) {
	items, err := h.svc.GetInventory(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, items)
}

// Equip 装备或卸下道具
func (h *PetHandler) Equip(c *gin.Context) {
	var req EquipRequest
	if !bindOptional(c, &req) {
		return
	}
	equipped := true
	if req.Equipped != nil {
		equipped = *req.Equipped
	}
	res, err := h.svc.Equip(c.Request.Context(), service.EquipCommand{
		UserID:   currentUser(c),
		ItemID:   c.Param("item_id"),
		Equipped: equipped,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, res)
}

// ListShop 商品列表，支持 category 与 available_only 过滤
func (h *PetHandler) ListShop(c *gin.Context) {
	availableOnly, _ := strconv.ParseBool(c.Query("available_only"))
	items, err := h.svc.ListShop(c.Request.Context(), model.ShopFilter{
		Category:      c.Query("category"),
		AvailableOnly: availableOnly,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, items)
}

// Purchase 购买道具
// @Summary 购买商店道具，扣款与入背包同时生效
// @Tags shop
// @Accept json
// @Param request body PurchaseRequest true "购买请求"
// @Failure 402 {object} web.Response
// @Failure 404 {object} web.Response
// @Router /api/v1/shop/purchase [post]
func (h *PetHandler) Purchase(c *gin.Context) {
	var req PurchaseRequest
	if !web.BindAndValidate(c, &req) {
		return
	}
	res, err := h.svc.Purchase(c.Request.Context(), service.PurchaseCommand{
		UserID:   currentUser(c),
		ItemID:   req.ItemID,
		Quantity: req.Quantity,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, res)
}

// GetMissions 今日任务
func (h *PetHandler) GetMissions(c *gin.Context) {
	view, err := h.svc.GetMissions(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, view)
}

// ClaimMission 领取任务奖励
func (h *PetHandler) ClaimMission(c *gin.Context) {
	res, err := h.svc.ClaimMission(c.Request.Context(), service.ClaimMissionCommand{
		UserID:    currentUser(c),
		MissionID: c.Param("id"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, res)
}

// GetStreak 签到状态
func (h *PetHandler) GetStreak(c *gin.Context) {
	status, err := h.svc.GetStreak(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, status)
}

// ClaimDaily 每日签到
func (h *PetHandler) ClaimDaily(c *gin.Context) {
	res, err := h.svc.ClaimDaily(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, res)
}

// Leaderboard 经验排行榜
func (h *PetHandler) Leaderboard(c *gin.Context) {
	limit := web.GetQueryInt(c, "limit", 10, 1, 100)
	entries, err := h.svc.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, entries)
}

// Transactions 金币流水
func (h *PetHandler) Transactions(c *gin.Context) {
	limit := web.GetQueryInt(c, "limit", 20, 1, 100)
	txs, err := h.svc.Transactions(c.Request.Context(), currentUser(c), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, txs)
}
