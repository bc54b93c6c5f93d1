package customers

import (
	"context"
	"net/http"
	"time"

	"nailbar/db"
	"nailbar/models"
	"nailbar/utils"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// Resolve finds the customer matching the extracted contact details, or
// creates one. Matching prefers email, then phone; a record with neither is
// always created fresh.
func Resolve(ctx context.Context, c models.Customer) (*models.Customer, error) {
	var filters bson.A
	if c.Email != "" {
		filters = append(filters, bson.M{"email": c.Email})
	}
	if c.Phone != "" {
		filters = append(filters, bson.M{"phone": c.Phone})
	}

	if len(filters) > 0 {
		var existing models.Customer
		err := db.CustomersCollection.FindOne(ctx, bson.M{"$or": filters}).Decode(&existing)
		if err == nil {
			return &existing, nil
		}
	}

	c.CustomerID = uuid.NewString()
	c.CreatedAt = time.Now()
	if c.Name == "" {
		c.Name = "Walk-in"
	}
	if _, err := db.CustomersCollection.InsertOne(ctx, c); err != nil {
		return nil, err
	}
	return &c, nil
}

// GET /api/customers/:id
func GetCustomer(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	customerID := ps.ByName("id")
	if customerID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var c models.Customer
	if err := db.CustomersCollection.FindOne(ctx, bson.M{"customerid": customerID}).Decode(&c); err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "customer not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"customer": c})
}

// GET /api/customers
func ListCustomers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	cur, err := db.CustomersCollection.Find(ctx, bson.M{})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	defer cur.Close(ctx)

	var list []models.Customer
	for cur.Next(ctx) {
		var c models.Customer
		if err := cur.Decode(&c); err != nil {
			continue
		}
		list = append(list, c)
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"customers": list})
}
