// Command mockbackend serves a fake dairy backend with generated customers,
// quantity updates, invoices and stock for local development.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gin-gonic/gin"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/infrastructure/logger"
	"go.uber.org/zap"
)

func main() {
	var (
		addr        string
		seed        uint64
		customers   int
		failureRate float64
		latency     time.Duration
		logLevel    string
	)
	flag.StringVar(&addr, "addr", ":5000", "Listen address")
	flag.Uint64Var(&seed, "seed", 0, "Data seed; 0 picks a random one")
	flag.IntVar(&customers, "customers", 60, "Number of generated customers")
	flag.Float64Var(&failureRate, "failure-rate", 0, "Fraction of requests answered with 500")
	flag.DurationVar(&latency, "latency", 0, "Delay added to every response")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if seed == 0 {
		seed = rand.Uint64()
	}
	data := newStore(gofakeit.New(seed), customers, time.Now())
	log.Info("Generated mock data",
		zap.Uint64("seed", seed),
		zap.Int("customers", len(data.customers)),
		zap.Int("quantity_updates", len(data.updates)),
	)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(chaos(failureRate, latency))
	registerRoutes(engine.Group("/api"), data)

	srv := &http.Server{Addr: addr, Handler: engine, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("Mock backend listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
}

// chaos delays every request and fails a fraction of them
func chaos(failureRate float64, latency time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if latency > 0 {
			time.Sleep(latency)
		}
		if failureRate > 0 && rand.Float64() < failureRate {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "injected failure"})
			return
		}
		c.Next()
	}
}

func registerRoutes(api *gin.RouterGroup, s *store) {
	api.GET("/customers", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.listCustomers(customerFilter{
			Search:      c.Query("search"),
			MilkType:    c.Query("milkType"),
			Subcategory: c.Query("subcategory"),
			Status:      c.Query("status"),
			SortField:   c.Query("sortField"),
			SortOrder:   c.Query("sortOrder"),
			Page:        queryInt(c, "page"),
			Limit:       queryInt(c, "limit"),
		}))
	})

	api.DELETE("/customers/:id", func(c *gin.Context) {
		if err := s.deleteCustomer(c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Customer deleted"})
	})

	api.GET("/invoices/dashboard", func(c *gin.Context) {
		total, due := s.invoiceSummary()
		c.JSON(http.StatusOK, gin.H{"summary": gin.H{"totalAmount": total, "totalDue": due}})
	})

	api.GET("/stock/summary", func(c *gin.Context) {
		in, current, records := s.stockSummary(c.Query("startDate"), c.Query("endDate"))
		c.JSON(http.StatusOK, gin.H{
			"totals":  gin.H{"stockIn": in, "currentStock": current},
			"records": records,
		})
	})

	api.GET("/quantity-updates", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": s.quantityUpdates(c.Query("startDate"), c.Query("endDate"))})
	})

	api.PUT("/quantity-updates/:id/accept", func(c *gin.Context) {
		var body struct {
			NewQuantity float64 `json:"newQuantity"`
			LastUpdated string  `json:"lastUpdated"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		if err := s.accept(c.Param("id"), body.NewQuantity, body.LastUpdated); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Quantity update accepted"})
	})

	api.PUT("/quantity-updates/:id/reject", func(c *gin.Context) {
		var body struct {
			Reason string `json:"reason" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Rejection reason is required"})
			return
		}
		if err := s.reject(c.Param("id"), body.Reason); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Quantity update rejected"})
	})
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errStale):
		status = http.StatusConflict
	case errors.Is(err, errNotPending):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"message": err.Error()})
}

func queryInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(c.Query(key))
	return n
}
