package controllers

import (
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"backend/config"
	"backend/middleware"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMain(m *testing.M) {
	middleware.InitMetrics()
	os.Exit(m.Run())
}

// useMockDatabase points the global collection handles at the mocked client
// so the handlers run their real session and command flow against it.
func useMockDatabase(mt *mtest.T) {
	config.Client = mt.Client
	db := mt.Client.Database("karinderya")
	config.UlamCollection = db.Collection("ulams")
	config.IngredientCollection = db.Collection("ingredients")
	config.SaleCollection = db.Collection("sales")
}

func ingredientDoc(id primitive.ObjectID, name string, stock float64) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: name},
		{Key: "unit", Value: "kg"},
		{Key: "cost_per_unit", Value: 180.0},
		{Key: "stock_quantity", Value: stock},
		{Key: "category", Value: "Meat"},
	}
}

// stockDeltasByIngredient sums every stock_quantity $inc the handlers sent,
// keyed by ingredient id. Record followed by delete must sum to zero.
func stockDeltasByIngredient(mt *mtest.T) map[string]float64 {
	deltas := make(map[string]float64)
	for _, ev := range mt.GetAllStartedEvents() {
		if ev.CommandName != "findAndModify" {
			continue
		}
		id := ev.Command.Lookup("query", "_id").ObjectID().Hex()
		deltas[id] += ev.Command.Lookup("update", "$inc", "stock_quantity").Double()
	}
	return deltas
}

func commandWasSent(mt *mtest.T, name string) bool {
	for _, ev := range mt.GetAllStartedEvents() {
		if ev.CommandName == name {
			return true
		}
	}
	return false
}

func TestRecordThenDeleteRestoresStockExactly(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("round trip", func(mt *mtest.T) {
		useMockDatabase(mt)
		r := salesTestRouter()

		ulamID := primitive.NewObjectID()
		ing1 := primitive.NewObjectID()
		ing2 := primitive.NewObjectID()

		ulamDoc := bson.D{
			{Key: "_id", Value: ulamID},
			{Key: "name", Value: "Adobo"},
			{Key: "selling_price", Value: 85.0},
			{Key: "status", Value: "active"},
			{Key: "ingredients", Value: bson.A{
				bson.D{{Key: "ingredient_id", Value: ing1.Hex()}, {Key: "quantity_per_serving", Value: 0.5}},
				bson.D{{Key: "ingredient_id", Value: ing2.Hex()}, {Key: "quantity_per_serving", Value: 0.1}},
			}},
		}

		// record: ulam lookup, two stock reads, two guarded deducts, insert, commit
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "karinderya.ulams", mtest.FirstBatch, ulamDoc),
			mtest.CreateCursorResponse(0, "karinderya.ingredients", mtest.FirstBatch, ingredientDoc(ing1, "Manok", 10)),
			mtest.CreateCursorResponse(0, "karinderya.ingredients", mtest.FirstBatch, ingredientDoc(ing2, "Toyo", 5)),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: ingredientDoc(ing1, "Manok", 9)}),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: ingredientDoc(ing2, "Toyo", 4.8)}),
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(),
		)

		body := `{"ulam_id":"` + ulamID.Hex() + `","quantity_sold":2,"price_per_serving":85,"sale_date":"2026-08-29"}`
		if w := postJSON(r, "/sales", body); w.Code != http.StatusOK {
			mt.Fatalf("expected 200 recording sale, got %d: %s", w.Code, w.Body.String())
		}

		saleID := primitive.NewObjectID()
		saleDoc := bson.D{
			{Key: "_id", Value: saleID},
			{Key: "sale_date", Value: "2026-08-29"},
			{Key: "sale_time", Value: "12:00:00"},
			{Key: "ulam_id", Value: ulamID.Hex()},
			{Key: "quantity_sold", Value: 2},
			{Key: "price_per_serving", Value: 85.0},
			{Key: "total_price", Value: 170.0},
			{Key: "ingredients", Value: bson.A{
				bson.D{{Key: "ingredient_id", Value: ing1.Hex()}, {Key: "quantity_per_serving", Value: 0.5}, {Key: "deducted", Value: 1.0}},
				bson.D{{Key: "ingredient_id", Value: ing2.Hex()}, {Key: "quantity_per_serving", Value: 0.1}, {Key: "deducted", Value: 0.2}},
			}},
		}

		// delete: sale lookup, two restores from the snapshot, delete, commit
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "karinderya.sales", mtest.FirstBatch, saleDoc),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: ingredientDoc(ing1, "Manok", 10)}),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: ingredientDoc(ing2, "Toyo", 5)}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(),
		)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("DELETE", "/sales/"+saleID.Hex(), nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			mt.Fatalf("expected 200 deleting sale, got %d: %s", w.Code, w.Body.String())
		}

		deltas := stockDeltasByIngredient(mt)
		if len(deltas) != 2 {
			mt.Fatalf("expected stock adjustments on 2 ingredients, got %d", len(deltas))
		}
		for id, sum := range deltas {
			if math.Abs(sum) > 1e-9 {
				mt.Errorf("ingredient %s not restored exactly, net delta %v", id, sum)
			}
		}
	})
}

func TestRecordSaleAbortsWhenGuardedDeductionFails(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("second line drained concurrently", func(mt *mtest.T) {
		useMockDatabase(mt)
		r := salesTestRouter()

		ulamID := primitive.NewObjectID()
		ing1 := primitive.NewObjectID()
		ing2 := primitive.NewObjectID()

		ulamDoc := bson.D{
			{Key: "_id", Value: ulamID},
			{Key: "name", Value: "Sinigang"},
			{Key: "selling_price", Value: 95.0},
			{Key: "status", Value: "active"},
			{Key: "ingredients", Value: bson.A{
				bson.D{{Key: "ingredient_id", Value: ing1.Hex()}, {Key: "quantity_per_serving", Value: 0.5}},
				bson.D{{Key: "ingredient_id", Value: ing2.Hex()}, {Key: "quantity_per_serving", Value: 0.3}},
			}},
		}

		// the pre-check sees enough stock, but the guarded update on the
		// second line matches nothing: another sale drained it in between
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "karinderya.ulams", mtest.FirstBatch, ulamDoc),
			mtest.CreateCursorResponse(0, "karinderya.ingredients", mtest.FirstBatch, ingredientDoc(ing1, "Baboy", 10)),
			mtest.CreateCursorResponse(0, "karinderya.ingredients", mtest.FirstBatch, ingredientDoc(ing2, "Sampalok", 2)),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: ingredientDoc(ing1, "Baboy", 9)}),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateSuccessResponse(),
		)

		body := `{"ulam_id":"` + ulamID.Hex() + `","quantity_sold":2,"price_per_serving":95,"sale_date":"2026-08-29"}`
		w := postJSON(r, "/sales", body)

		if w.Code != http.StatusConflict {
			mt.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "insufficient_stock") {
			mt.Errorf("expected insufficient_stock code, got %s", w.Body.String())
		}
		if commandWasSent(mt, "insert") {
			mt.Error("sale was inserted even though a deduction failed")
		}
		if !commandWasSent(mt, "abortTransaction") {
			mt.Error("transaction was not aborted after the failed deduction")
		}

		// every deduct must carry the sufficiency guard
		for _, ev := range mt.GetAllStartedEvents() {
			if ev.CommandName != "findAndModify" {
				continue
			}
			if ev.Command.Lookup("query", "stock_quantity", "$gte").Double() <= 0 {
				mt.Error("deduction sent without a stock_quantity guard")
			}
		}
	})
}

func TestRecordSaleShortStockLeavesStockUntouched(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("pre-check rejects before any deduction", func(mt *mtest.T) {
		useMockDatabase(mt)
		r := salesTestRouter()

		ulamID := primitive.NewObjectID()
		ing1 := primitive.NewObjectID()

		ulamDoc := bson.D{
			{Key: "_id", Value: ulamID},
			{Key: "name", Value: "Tinola"},
			{Key: "selling_price", Value: 75.0},
			{Key: "status", Value: "active"},
			{Key: "ingredients", Value: bson.A{
				bson.D{{Key: "ingredient_id", Value: ing1.Hex()}, {Key: "quantity_per_serving", Value: 0.5}},
			}},
		}

		// 0.4 in stock, 1.0 required for 2 servings
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "karinderya.ulams", mtest.FirstBatch, ulamDoc),
			mtest.CreateCursorResponse(0, "karinderya.ingredients", mtest.FirstBatch, ingredientDoc(ing1, "Manok", 0.4)),
			mtest.CreateSuccessResponse(),
		)

		body := `{"ulam_id":"` + ulamID.Hex() + `","quantity_sold":2,"price_per_serving":75,"sale_date":"2026-08-29"}`
		w := postJSON(r, "/sales", body)

		if w.Code != http.StatusConflict {
			mt.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
		}
		if commandWasSent(mt, "findAndModify") {
			mt.Error("stock was touched even though the pre-check failed")
		}
		if commandWasSent(mt, "insert") {
			mt.Error("sale was inserted even though the pre-check failed")
		}
	})
}

func TestRecordSaleReportsBrokenRecipeLine(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("recipe points at a deleted ingredient", func(mt *mtest.T) {
		useMockDatabase(mt)
		r := salesTestRouter()

		ulamID := primitive.NewObjectID()
		gone := primitive.NewObjectID()

		ulamDoc := bson.D{
			{Key: "_id", Value: ulamID},
			{Key: "name", Value: "Kare-kare"},
			{Key: "selling_price", Value: 120.0},
			{Key: "status", Value: "active"},
			{Key: "ingredients", Value: bson.A{
				bson.D{{Key: "ingredient_id", Value: gone.Hex()}, {Key: "quantity_per_serving", Value: 0.5}},
			}},
		}

		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "karinderya.ulams", mtest.FirstBatch, ulamDoc),
			mtest.CreateCursorResponse(0, "karinderya.ingredients", mtest.FirstBatch),
			mtest.CreateSuccessResponse(),
		)

		body := `{"ulam_id":"` + ulamID.Hex() + `","quantity_sold":1,"price_per_serving":120,"sale_date":"2026-08-29"}`
		w := postJSON(r, "/sales", body)

		if w.Code != http.StatusInternalServerError {
			mt.Fatalf("expected 500, got %d: %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "broken_recipe_reference") {
			mt.Errorf("expected broken_recipe_reference code, got %s", w.Body.String())
		}
		if !strings.Contains(w.Body.String(), gone.Hex()) {
			mt.Errorf("expected response to name ingredient %s, got %s", gone.Hex(), w.Body.String())
		}
		if commandWasSent(mt, "findAndModify") {
			mt.Error("stock was touched for a broken recipe")
		}
	})
}
